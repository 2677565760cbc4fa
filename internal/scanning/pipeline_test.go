package scanning

import (
	"context"
	"errors"
	"time"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/zombor/receipt-ocr/internal/extract"
)

const cafeReceipt = `CORNER CAFE
12 Elm Road
03/14/2024 09:12
Latte  4.50
Bagel  2.25
Subtotal  6.75
Tax  0.54
Total  7.29`

var _ = Describe("Pipeline", func() {
	var (
		pre      *mockPreprocessor
		rec      *mockRecognizer
		opts     []Option
		pipeline *Pipeline
		data     []byte
		receipt  *Receipt
		err      error
		fixedNow = time.Date(2024, 3, 14, 9, 15, 30, 0, time.UTC)
	)

	BeforeEach(func() {
		pre = &mockPreprocessor{names: []string{"gray", "bilateral", "otsu", "adaptive"}}
		rec = newMockRecognizer()
		opts = []Option{WithClock(func() time.Time { return fixedNow })}
		data = encodePNG(16, 16)
	})

	JustBeforeEach(func() {
		pipeline = NewPipeline(pre, rec, opts...)
		receipt, err = pipeline.ScanReceipt(context.Background(), data, "image/png")
	})

	When("one variant reads the receipt best", func() {
		BeforeEach(func() {
			rec.set("gray", PSMSingleBlock, "C0RNER\n??")
			rec.set("otsu", PSMSingleBlock, "CORNER CAFE\nTotal 7.29")
			rec.set("otsu", PSMSingleColumn, cafeReceipt)
			rec.set("adaptive", PSMSparseText, "Latte 4.50\nBagel 2.25")
		})

		It("should not return an error", func() {
			Expect(err).NotTo(HaveOccurred())
		})

		It("should record the winning variant and profile", func() {
			Expect(receipt.Meta.PreprocessVariant).To(Equal("otsu"))
			Expect(receipt.Meta.Profile).To(Equal("oem3-psm4-eng"))
			Expect(receipt.Meta.Score).To(Equal(6))
		})

		It("should stamp the record with the injected clock", func() {
			Expect(receipt.Meta.Timestamp).To(Equal("2024-03-14 09:15:30"))
		})

		It("should extract the fields", func() {
			Expect(*receipt.Merchant).To(Equal("CORNER CAFE"))
			Expect(*receipt.Date).To(Equal("03/14/2024"))
			Expect(*receipt.Totals.Subtotal).To(Equal("6.75"))
			Expect(*receipt.Totals.Tax).To(Equal("0.54"))
			Expect(*receipt.Totals.Total).To(Equal("7.29"))
		})

		It("should extract items in order", func() {
			Expect(receipt.Items).To(HaveLen(2))
			Expect(receipt.Items[0].Description).To(Equal("Latte"))
			Expect(*receipt.Items[0].Amount).To(Equal("4.50"))
			Expect(receipt.Items[1].Description).To(Equal("Bagel"))
		})

		It("should keep the raw recognition output", func() {
			Expect(receipt.RawText).To(Equal(cafeReceipt))
			Expect(receipt.RawLines).To(HaveLen(8))
		})

		It("should call the engine once per variant and profile", func() {
			Expect(rec.callCount()).To(Equal(4 * 3))
		})

		When("recognition runs in parallel", func() {
			BeforeEach(func() {
				opts = append(opts, WithWorkers(4))
			})

			It("should pick the same variant", func() {
				Expect(err).NotTo(HaveOccurred())
				Expect(receipt.Meta.PreprocessVariant).To(Equal("otsu"))
				Expect(receipt.Meta.Profile).To(Equal("oem3-psm4-eng"))
			})
		})
	})

	When("variants tie on score", func() {
		BeforeEach(func() {
			rec.set("bilateral", PSMSingleBlock, "Milk 1.00")
			rec.set("otsu", PSMSingleBlock, "Eggs 2.00")
			rec.set("adaptive", PSMSingleBlock, "Soap 3.00")
			opts = append(opts, WithWorkers(3))
		})

		It("should keep the first variant in order", func() {
			Expect(receipt.Meta.PreprocessVariant).To(Equal("bilateral"))
			Expect(receipt.RawLines).To(Equal([]string{"Milk 1.00"}))
		})
	})

	When("nothing is recognized", func() {
		It("should return a record with absent fields", func() {
			Expect(err).NotTo(HaveOccurred())
			Expect(receipt.Meta.PreprocessVariant).To(Equal("gray"))
			Expect(receipt.Merchant).To(BeNil())
			Expect(receipt.Totals.Total).To(BeNil())
			Expect(receipt.Items).To(BeEmpty())
			Expect(receipt.RawLines).To(BeEmpty())
		})
	})

	When("the image cannot be decoded", func() {
		BeforeEach(func() {
			data = []byte("garbage")
		})

		It("should return a decode error and no record", func() {
			var derr *DecodeError
			Expect(errors.As(err, &derr)).To(BeTrue())
			Expect(receipt).To(BeNil())
		})

		It("should not call the engine", func() {
			Expect(rec.callCount()).To(BeZero())
		})
	})

	When("preprocessing fails", func() {
		BeforeEach(func() {
			pre.err = errors.New("empty matrix")
		})

		It("should return a decode error", func() {
			var derr *DecodeError
			Expect(errors.As(err, &derr)).To(BeTrue())
			Expect(err.Error()).To(ContainSubstring("empty matrix"))
		})
	})

	When("the engine fails on a variant", func() {
		var engineErr = errors.New("tesseract exited 1")

		BeforeEach(func() {
			rec.err = engineErr
			rec.failOn = "otsu"
		})

		It("should return a recognition error naming the variant", func() {
			var rerr *RecognitionError
			Expect(errors.As(err, &rerr)).To(BeTrue())
			Expect(rerr.Variant).To(Equal("otsu"))
			Expect(errors.Is(err, engineErr)).To(BeTrue())
			Expect(receipt).To(BeNil())
		})

		When("recognition runs in parallel", func() {
			BeforeEach(func() {
				opts = append(opts, WithWorkers(2))
			})

			It("should still surface the engine failure", func() {
				Expect(errors.Is(err, engineErr)).To(BeTrue())
				Expect(receipt).To(BeNil())
			})
		})
	})

	When("the item start index is overridden", func() {
		BeforeEach(func() {
			rec.set("gray", PSMSingleBlock, "Joe's Diner\n123 Main St\nBurger  $8.99\nFries  $3.50\nSubtotal  $12.49\nTax  $1.00\nTotal  $13.49")
			opts = append(opts, WithExtractOptions(extract.Options{ItemStartIndex: 2}))
		})

		It("should include items right after the header", func() {
			Expect(receipt.Items).To(HaveLen(2))
			Expect(receipt.Items[0].Description).To(Equal("Burger"))
			Expect(*receipt.Items[0].Amount).To(Equal("8.99"))
		})
	})
})

var _ = Describe("Pipeline.ScanFile", func() {
	It("should return a decode error for a missing file", func() {
		p := NewPipeline(&mockPreprocessor{names: []string{"gray"}}, newMockRecognizer())
		r, err := p.ScanFile(context.Background(), "/nonexistent/receipt.png")
		var derr *DecodeError
		Expect(errors.As(err, &derr)).To(BeTrue())
		Expect(r).To(BeNil())
	})
})

var _ = Describe("Pipeline cancellation", func() {
	It("should stop before calling the engine when the context is done", func() {
		rec := newMockRecognizer()
		p := NewPipeline(&mockPreprocessor{names: []string{"gray", "otsu"}}, rec)
		ctx, cancel := context.WithCancel(context.Background())
		cancel()
		_, err := p.ScanReceipt(ctx, encodePNG(4, 4), "image/png")
		Expect(errors.Is(err, context.Canceled)).To(BeTrue())
		Expect(rec.callCount()).To(BeZero())
	})
})
