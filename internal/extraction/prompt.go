package extraction

// InvoicePrompt instructs the model to return the four invoice fields as a
// single JSON object, using null for anything it cannot find.
const InvoicePrompt = `
Analyze this invoice PDF and extract the following in JSON format:
{
  "vendor_name": "exact company name",
  "invoice_number": "invoice ID",
  "invoice_amount": 1234.56,
  "invoice_date": "YYYY-MM-DD"
}
Return only valid JSON. If a field is not found, use null.
`
