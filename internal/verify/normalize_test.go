package verify

import (
	"time"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
)

var _ = Describe("NormalizeAmount", func() {
	It("parses a plain decimal", func() {
		amount, ok := NormalizeAmount("250.50")
		Expect(ok).To(BeTrue())
		Expect(amount.String()).To(Equal("250.5"))
	})

	It("strips thousands separators", func() {
		amount, ok := NormalizeAmount("73,000.00")
		Expect(ok).To(BeTrue())
		Expect(amount.Equal(amountOf("73000.00"))).To(BeTrue())
	})

	It("strips trailing currency words", func() {
		amount, ok := NormalizeAmount("1000 Birr")
		Expect(ok).To(BeTrue())
		Expect(amount.Equal(amountOf("1000.00"))).To(BeTrue())
	})

	It("handles ETB suffixes", func() {
		amount, ok := NormalizeAmount("1,234.56 ETB")
		Expect(ok).To(BeTrue())
		Expect(amount.Equal(amountOf("1234.56"))).To(BeTrue())
	})

	It("reports absence for non-numeric text", func() {
		_, ok := NormalizeAmount("no amount here")
		Expect(ok).To(BeFalse())
	})

	It("reports absence for the empty string", func() {
		_, ok := NormalizeAmount("")
		Expect(ok).To(BeFalse())
	})
})

var _ = Describe("NormalizeDate", func() {
	It("parses YYYY-MM-DD HH:mm", func() {
		date, ok := NormalizeDate("2025-03-27 13:25")
		Expect(ok).To(BeTrue())
		Expect(date.Year()).To(Equal(2025))
		Expect(date.Month()).To(Equal(time.March))
		Expect(date.Day()).To(Equal(27))
		Expect(date.Hour()).To(Equal(13))
		Expect(date.Minute()).To(Equal(25))
	})

	It("parses DD-MM-YYYY HH:mm:ss", func() {
		date, ok := NormalizeDate("27-03-2025 13:25:00")
		Expect(ok).To(BeTrue())
		Expect(date.Month()).To(Equal(time.March))
		Expect(date.Day()).To(Equal(27))
	})

	It("parses the localized AM/PM form", func() {
		date, ok := NormalizeDate("27/03/2025, 1:25:33 PM")
		Expect(ok).To(BeTrue())
		Expect(date.Day()).To(Equal(27))
		Expect(date.Hour()).To(Equal(13))
	})

	It("yields the same moment for equivalent calendar values", func() {
		a, ok := NormalizeDate("2025-03-27 13:25")
		Expect(ok).To(BeTrue())
		b, ok := NormalizeDate("27-03-2025 13:25:00")
		Expect(ok).To(BeTrue())
		Expect(a.Equal(b)).To(BeTrue())
	})

	It("reports absence for unknown layouts", func() {
		_, ok := NormalizeDate("27th of March")
		Expect(ok).To(BeFalse())
	})
})

var _ = Describe("NormalizeName", func() {
	It("title-cases an upper-case name", func() {
		Expect(NormalizeName("JOHN DOE")).To(Equal("John Doe"))
	})

	It("is deterministic regardless of input casing", func() {
		Expect(NormalizeName("jOhN dOe")).To(Equal("John Doe"))
		Expect(NormalizeName("john doe")).To(Equal("John Doe"))
	})

	It("collapses surrounding whitespace", func() {
		Expect(NormalizeName("  ABEBE   KEBEDE ")).To(Equal("Abebe Kebede"))
	})

	It("returns empty for empty input", func() {
		Expect(NormalizeName("")).To(Equal(""))
	})
})
