package verify

import (
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
)

// Flattened page text as the pdf parser produces it, taken from real
// receipt layouts with the personal data swapped out.
const cbeReceiptText = "Commercial Bank of Ethiopia The Bank You can always Rely on! " +
	"Customer Receipt VAT Receipt No Payer ABEBE KEBEDE Account 1****3377 " +
	"Receiver SARA GENERAL TRADING Account 1****8891 " +
	"Payment Date & Time 27/03/2025, 1:25:33 PM Reference No. (VAT Invoice No) FT2513001V2G " +
	"Reason / Type of service Transfer to SARA GENERAL TRADING Transferred Amount 73,000.00 ETB " +
	"Commission or Service Charge 0.00 ETB 15% VAT on Commission 0.00 ETB " +
	"Total amount debited from customers account 73,000.00 ETB"

const dashenReceiptText = "Dashen Bank Share Company Transaction Receipt " +
	"Sender Name ABEBE KEBEDE Sender Account 0****4421 " +
	"Receiver Name SARA GENERAL TRADING " +
	"Transaction Ref DSH98765432A Transaction Date 27-03-2025 13:25:33 " +
	"Transferred Amount 5,500.00 ETB Service Charge 27.50 Total Amount 5,527.50"

const cbeBirrReceiptText = "CBE Birr Payment Receipt " +
	"Customer Name ABEBE KEBEDE Phone No. 251911223344 " +
	"Merchant Name SARA GENERAL TRADING Amount 250.00 ETB " +
	"Receipt No. RCP20250327X Transaction Date 27-03-2025 13:25:33 Status Completed"

var _ = Describe("CBE field table", func() {
	doc := &Document{Format: FormatPDF, Text: cbeReceiptText}

	It("extracts and normalizes every required field", func() {
		record := ExtractRecord(doc, cbeFields)
		receipt, missing := buildReceipt(InstitutionCBE, cbeFields, record)
		Expect(missing).To(BeEmpty())
		Expect(receipt.PayerName).To(Equal("Abebe Kebede"))
		Expect(receipt.ReceiverName).To(Equal("Sara General Trading"))
		Expect(receipt.Reference).To(Equal("FT2513001V2G"))
		Expect(receipt.Amount.Equal(amountOf("73000.00"))).To(BeTrue())
		Expect(receipt.Date.Year()).To(Equal(2025))
		Expect(receipt.Date.Hour()).To(Equal(13))
	})

	It("captures the payer account and reason", func() {
		record := ExtractRecord(doc, cbeFields)
		Expect(record).To(HaveKeyWithValue(FieldPayerAccount, "1****3377"))
		Expect(record).To(HaveKeyWithValue(FieldReason, "Transfer to SARA GENERAL TRADING"))
	})

	It("reports the missing reference when the document lacks one", func() {
		partial := &Document{Format: FormatPDF, Text: "Payer ABEBE KEBEDE Account 1****3377 Transferred Amount 73,000.00 ETB Payment Date & Time 27/03/2025, 1:25:33 PM"}
		record := ExtractRecord(partial, cbeFields)
		_, missing := buildReceipt(InstitutionCBE, cbeFields, record)
		Expect(missing).To(ContainElement(FieldReference))
	})

	It("builds the lookup id from reference and account suffix", func() {
		url := cbeReceiptURL("https://apps.cbe.com.et:100")(Reference{Value: "FT2513001V2G", AccountSuffix: "39003377"})
		Expect(url).To(Equal("https://apps.cbe.com.et:100/?id=FT2513001V2G39003377"))
	})
})

var _ = Describe("Dashen field table", func() {
	doc := &Document{Format: FormatPDF, Text: dashenReceiptText}

	It("extracts and normalizes every required field", func() {
		record := ExtractRecord(doc, dashenFields)
		receipt, missing := buildReceipt(InstitutionDashen, dashenFields, record)
		Expect(missing).To(BeEmpty())
		Expect(receipt.PayerName).To(Equal("Abebe Kebede"))
		Expect(receipt.Reference).To(Equal("DSH98765432A"))
		Expect(receipt.Amount.Equal(amountOf("5500.00"))).To(BeTrue())
		Expect(receipt.ServiceFee.Equal(amountOf("27.50"))).To(BeTrue())
		Expect(receipt.TotalAmount.Equal(amountOf("5527.50"))).To(BeTrue())
	})
})

var _ = Describe("CBE-Birr field table", func() {
	doc := &Document{Format: FormatPDF, Text: cbeBirrReceiptText}

	It("extracts and normalizes every required field", func() {
		record := ExtractRecord(doc, cbeBirrFields)
		receipt, missing := buildReceipt(InstitutionCBEBirr, cbeBirrFields, record)
		Expect(missing).To(BeEmpty())
		Expect(receipt.PayerName).To(Equal("Abebe Kebede"))
		Expect(receipt.PayerPhone).To(Equal("251911223344"))
		Expect(receipt.Reference).To(Equal("RCP20250327X"))
		Expect(receipt.Amount.Equal(amountOf("250.00"))).To(BeTrue())
		Expect(receipt.Status).To(Equal("Completed"))
	})
})
