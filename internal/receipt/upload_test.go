package receipt

import (
	"strings"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
)

var _ = Describe("Upload validation", func() {
	DescribeTable("AllowedFile",
		func(name string, expected bool) {
			Expect(AllowedFile(name)).To(Equal(expected))
		},
		Entry("png", "a.png", true),
		Entry("upper-case jpeg", "A.JPEG", true),
		Entry("webp", "scan.webp", true),
		Entry("tiff", "scan.tiff", true),
		Entry("bmp", "scan.bmp", true),
		Entry("gif", "scan.gif", true),
		Entry("pdf", "scan.pdf", false),
		Entry("no extension", "receipt", false),
		Entry("trailing dot", "receipt.", false),
	)

	DescribeTable("ValidateUpload",
		func(name string, size int64, expected error) {
			err := ValidateUpload(name, size, DefaultMaxUploadSize)
			if expected == nil {
				Expect(err).NotTo(HaveOccurred())
			} else {
				Expect(err).To(MatchError(expected))
			}
		},
		Entry("accepted", "a.jpg", int64(100), nil),
		Entry("exactly the limit", "a.jpg", DefaultMaxUploadSize, nil),
		Entry("empty name", "", int64(100), ErrEmptyFilename),
		Entry("wrong type", "a.txt", int64(100), ErrUnsupportedType),
		Entry("too large", "a.jpg", DefaultMaxUploadSize+1, ErrFileTooLarge),
	)

	DescribeTable("sanitizeFilename",
		func(input, expected string) {
			Expect(sanitizeFilename(input)).To(Equal(expected))
		},
		Entry("plain name", "receipt.jpg", "receipt.jpg"),
		Entry("spaces become underscores", "my  lunch receipt.png", "my_lunch_receipt.png"),
		Entry("unix directories are dropped", "../../etc/passwd.png", "passwd.png"),
		Entry("windows directories are dropped", `C:\Users\me\scan.jpg`, "scan.jpg"),
		Entry("non-ascii is dropped", "reçu café.jpg", "reu_caf.jpg"),
		Entry("leading dots are trimmed", "..hidden.png", "hidden.png"),
		Entry("extension is lower-cased", "IMG_0001.JPG", "IMG_0001.jpg"),
		Entry("nothing left", "###.png", "receipt.png"),
	)

	It("truncates long names", func() {
		name := sanitizeFilename(strings.Repeat("a", 80) + ".jpg")
		Expect(name).To(Equal(strings.Repeat("a", 50) + ".jpg"))
	})
})
