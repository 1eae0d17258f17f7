package llm

// PromptInvoiceExtraction asks for one record per invoice, combining pages
const PromptInvoiceExtraction = `Extract the following invoice information and return as JSON.
If the invoice spans multiple pages, combine the data into a single invoice record.

Fields required:
- invoice_number
- invoice_date (DD-MM-YYYY format)
- customer_name
- total_amount (Number only, NO COMMAS)
- currency
- igst_amount (Total Integrated Tax, Number only, NO COMMAS)
- cgst_amount (Total Central Tax, Number only, NO COMMAS)
- sgst_amount (Total State Tax, Number only, NO COMMAS)
- items: List of items, each containing:
    - item_name
    - quantity (number)
    - uom (Unit of Measurement e.g., Nos, Kgs, Box)
    - rate (unit price, Number only, NO COMMAS)
    - amount (line total, Number only, NO COMMAS)
    - hsn_code (if available)

JSON Structure:
{
    "invoice_number": "...",
    "invoice_date": "...",
    "customer_name": "...",
    "total_amount": 0.00,
    "currency": "...",
    "igst_amount": 0.00,
    "cgst_amount": 0.00,
    "sgst_amount": 0.00,
    "items": [
        {
            "item_name": "...",
            "quantity": 0,
            "uom": "...",
            "rate": 0.00,
            "amount": 0.00,
            "hsn_code": "..."
        }
    ]
}

IMPORTANT:
1. Return ONLY valid JSON.
2. Do NOT use commas in numbers (e.g., use 1500.00, NOT 1,500.00).`

// PromptConnectionCheck is a cheap text-only request used to verify credentials
const PromptConnectionCheck = `Reply with the single word OK.`
