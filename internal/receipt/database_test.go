package receipt

import (
	"path/filepath"
	"time"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/zombor/receipt-ocr/internal/scanning"
)

var _ = Describe("BoltDB", func() {
	var (
		dbPath string
		db     *BoltDB
	)

	newScan := func(id string, created time.Time) *Scan {
		return &Scan{
			ID:           id,
			Filename:     id + ".jpg",
			OriginalName: id + ".jpg",
			ContentType:  "image/jpeg",
			Size:         42,
			CreatedAt:    created,
			Result: &scanning.Receipt{
				Meta:     scanning.Meta{PreprocessVariant: "clahe", Timestamp: "2024-01-15 10:00:00"},
				Merchant: strPtr("Corner Cafe"),
				Totals:   scanning.Totals{Total: strPtr("13.49")},
				Items:    []scanning.Item{{Description: "Latte", Amount: strPtr("4.50")}},
				RawLines: []string{"Corner Cafe", "Total 13.49"},
			},
		}
	}

	BeforeEach(func() {
		dbPath = filepath.Join(GinkgoT().TempDir(), "test.db")
		var err error
		db, err = NewBoltDB(dbPath)
		Expect(err).NotTo(HaveOccurred())
	})

	AfterEach(func() {
		if db != nil {
			db.Close()
		}
	})

	Describe("SaveScan", func() {
		var (
			scan *Scan
			err  error
		)

		BeforeEach(func() {
			scan = newScan("test-id", time.Date(2024, 1, 15, 10, 0, 0, 0, time.UTC))
		})

		JustBeforeEach(func() {
			err = db.SaveScan(scan)
		})

		When("saving succeeds", func() {
			It("should not return an error", func() {
				Expect(err).NotTo(HaveOccurred())
			})

			It("should round-trip the record", func() {
				saved, getErr := db.GetScan("test-id")
				Expect(getErr).NotTo(HaveOccurred())
				Expect(saved.Filename).To(Equal("test-id.jpg"))
				Expect(saved.CreatedAt.Equal(scan.CreatedAt)).To(BeTrue())
				Expect(*saved.Result.Merchant).To(Equal("Corner Cafe"))
				Expect(saved.Result.Totals.Subtotal).To(BeNil())
				Expect(*saved.Result.Items[0].Amount).To(Equal("4.50"))
			})
		})

		When("the scan already exists", func() {
			BeforeEach(func() {
				Expect(db.SaveScan(newScan("test-id", time.Now()))).To(Succeed())
				scan.OriginalName = "replacement.jpg"
			})

			It("should replace it", func() {
				saved, getErr := db.GetScan("test-id")
				Expect(getErr).NotTo(HaveOccurred())
				Expect(saved.OriginalName).To(Equal("replacement.jpg"))
			})
		})
	})

	Describe("GetScan", func() {
		When("the scan does not exist", func() {
			It("returns ErrScanNotFound", func() {
				_, err := db.GetScan("missing")
				Expect(err).To(MatchError(ErrScanNotFound))
			})
		})
	})

	Describe("ListScans", func() {
		var (
			scans []*Scan
			err   error
		)

		JustBeforeEach(func() {
			scans, err = db.ListScans()
		})

		When("the database is empty", func() {
			It("should return an empty, non-nil list", func() {
				Expect(err).NotTo(HaveOccurred())
				Expect(scans).NotTo(BeNil())
				Expect(scans).To(BeEmpty())
			})
		})

		When("scans exist", func() {
			BeforeEach(func() {
				base := time.Date(2024, 1, 15, 10, 0, 0, 0, time.UTC)
				Expect(db.SaveScan(newScan("a", base))).To(Succeed())
				Expect(db.SaveScan(newScan("c", base.Add(2*time.Hour)))).To(Succeed())
				Expect(db.SaveScan(newScan("b", base.Add(time.Hour)))).To(Succeed())
			})

			It("should return them newest first", func() {
				Expect(err).NotTo(HaveOccurred())
				ids := make([]string, len(scans))
				for i, s := range scans {
					ids[i] = s.ID
				}
				Expect(ids).To(Equal([]string{"c", "b", "a"}))
			})
		})
	})

	Describe("DeleteScan", func() {
		BeforeEach(func() {
			Expect(db.SaveScan(newScan("test-id", time.Now()))).To(Succeed())
		})

		It("should remove the scan", func() {
			Expect(db.DeleteScan("test-id")).To(Succeed())
			_, err := db.GetScan("test-id")
			Expect(err).To(MatchError(ErrScanNotFound))
		})

		It("returns ErrScanNotFound for an unknown ID", func() {
			Expect(db.DeleteScan("missing")).To(MatchError(ErrScanNotFound))
		})
	})

	Describe("NewBoltDB", func() {
		It("should reopen an existing database with its data", func() {
			Expect(db.SaveScan(newScan("persisted", time.Now()))).To(Succeed())
			Expect(db.Close()).To(Succeed())

			reopened, err := NewBoltDB(dbPath)
			Expect(err).NotTo(HaveOccurred())
			db = reopened

			_, err = db.GetScan("persisted")
			Expect(err).NotTo(HaveOccurred())
		})

		It("returns an error for an unusable path", func() {
			_, err := NewBoltDB(filepath.Join(GinkgoT().TempDir(), "missing", "dir", "test.db"))
			Expect(err).To(MatchError(ContainSubstring("opening boltdb")))
		})
	})
})
