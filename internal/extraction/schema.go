package extraction

import (
	"fmt"

	"github.com/santhosh-tekuri/jsonschema/v5"
)

const invoiceSchemaJSON = `{
  "$schema": "https://json-schema.org/draft/2020-12/schema",
  "type": "object",
  "required": ["vendor_name", "invoice_number", "invoice_amount", "invoice_date"],
  "properties": {
    "vendor_name": {"type": ["string", "null"]},
    "invoice_number": {"type": ["string", "null"]},
    "invoice_amount": {"type": ["number", "null"]},
    "invoice_date": {"type": ["string", "null"], "pattern": "^\\d{4}-\\d{2}-\\d{2}$"}
  }
}`

var invoiceSchema = jsonschema.MustCompileString("invoice.json", invoiceSchemaJSON)

// ValidateSchema checks the result against the shape InvoicePrompt asks for.
// It is advisory only: a mismatch is reported but the result stays usable.
func ValidateSchema(r *Result) error {
	doc, err := r.AsMap()
	if err != nil {
		return err
	}
	if err := invoiceSchema.Validate(doc); err != nil {
		return fmt.Errorf("result does not match invoice schema: %w", err)
	}
	return nil
}
