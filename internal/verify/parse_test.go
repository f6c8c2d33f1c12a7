package verify

import (
	"errors"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
)

var _ = Describe("Parse", func() {
	It("builds a structural handle and flattened text for html", func() {
		doc, err := Parse(&RawDocument{
			Format: FormatHTML,
			Body:   []byte("<html><body><p>Receipt\n  for   payment</p></body></html>"),
		})
		Expect(err).NotTo(HaveOccurred())
		Expect(doc.Format).To(Equal(FormatHTML))
		Expect(doc.HTML).NotTo(BeNil())
		Expect(doc.Text).To(Equal("Receipt for payment"))
	})

	It("decodes json documents into a keyed object", func() {
		doc, err := Parse(&RawDocument{
			Format: FormatJSON,
			Body:   []byte(`{"header":{"status":"success"},"body":[]}`),
		})
		Expect(err).NotTo(HaveOccurred())
		Expect(doc.Format).To(Equal(FormatJSON))
		Expect(doc.JSON).To(HaveKey("header"))
	})

	It("sniffs structured bodies on html-tagged documents", func() {
		doc, err := Parse(&RawDocument{
			Format: FormatHTML,
			Body:   []byte("  \n {\"receiptNo\":\"CEH4E52ZXV\"}"),
		})
		Expect(err).NotTo(HaveOccurred())
		Expect(doc.Format).To(Equal(FormatJSON))
		Expect(doc.JSON).To(HaveKeyWithValue("receiptNo", "CEH4E52ZXV"))
	})

	It("fails with a ParseError on malformed json", func() {
		_, err := Parse(&RawDocument{Format: FormatJSON, Body: []byte("{not json")})
		Expect(err).To(HaveOccurred())
		var parseErr *ParseError
		Expect(errors.As(err, &parseErr)).To(BeTrue())
	})

	It("fails with a ParseError on an empty json object", func() {
		_, err := Parse(&RawDocument{Format: FormatJSON, Body: []byte("{}")})
		Expect(err).To(HaveOccurred())
	})

	It("fails with a ParseError on bytes that are not a pdf", func() {
		_, err := Parse(&RawDocument{Format: FormatPDF, Body: []byte("plainly not a pdf")})
		Expect(err).To(HaveOccurred())
	})
})

var _ = Describe("collapseWhitespace", func() {
	It("collapses runs of whitespace to single spaces", func() {
		Expect(collapseWhitespace("a \n\t b\r\n  c")).To(Equal("a b c"))
	})

	It("trims surrounding whitespace", func() {
		Expect(collapseWhitespace("  padded  ")).To(Equal("padded"))
	})
})
