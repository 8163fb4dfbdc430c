package ai

import (
	"encoding/json"
	"fmt"
)

const structurePrompt = `You are an AI assistant that converts natural language procurement requests into structured RFP data.

Given a user's description of what they want to procure, extract the following information:

1. title: A short title for the RFP
2. items: Array of items with name, quantity, and specifications
3. budget: Total budget amount and currency
4. timeline: Delivery deadline, response deadline
5. terms: Payment terms, warranty requirements
6. requirements: Any additional requirements

Respond ONLY with valid JSON in this exact format:
{
  "title": "string",
  "items": [
    {
      "name": "string",
      "quantity": number,
      "specifications": { "key": "value" }
    }
  ],
  "budget": {
    "amount": number,
    "currency": "USD"
  },
  "timeline": {
    "deliveryDeadline": "YYYY-MM-DD",
    "responseDeadline": "YYYY-MM-DD"
  },
  "terms": {
    "paymentTerms": "string",
    "warranty": "string"
  },
  "requirements": ["string"]
}

If a field is not mentioned, use a reasonable default instead of omitting it.

User Input: %s`

const extractPrompt = `You are an AI that extracts structured data from vendor proposal emails.

Given an RFP context and a vendor's email response, extract:

1. items: What they're offering (name, quantity, unit price, total, whether it meets the RFP specs)
2. totalPrice: Total quoted price (MUST be a number, use 0 if not found)
3. deliveryTime: When they can deliver (MUST be a string, use "Not specified" if not found)
4. paymentTerms: Their payment terms (MUST be a string, use "To be negotiated" if not found)
5. warranty: Warranty offered (MUST be a string, use "Standard warranty" if not found)
6. additionalNotes: Any other important terms
7. confidence: How confident you are in the extraction, from 0.0 to 1.0

IMPORTANT: All fields MUST have values. Never use null. Use default values if information is missing.

RFP Context:
%s

Vendor Email:
%s

Respond ONLY with valid JSON (no markdown, no code blocks):
{
  "items": [
    {
      "name": "string",
      "quantity": number,
      "unitPrice": number,
      "totalPrice": number,
      "meetsSpecs": true/false
    }
  ],
  "totalPrice": number,
  "currency": "USD",
  "deliveryTime": "string",
  "paymentTerms": "string",
  "warranty": "string",
  "additionalNotes": ["string"],
  "confidence": 0.0-1.0
}`

const scorePrompt = `You are a procurement analyst AI. Compare vendor proposals for an RFP.

RFP Requirements:
%s

Proposals:
%s

Analyze and score each proposal (0-100) based on:
- Price competitiveness (30%%)
- Delivery timeline (20%%)
- Specification compliance (25%%)
- Terms and warranty (15%%)
- Overall value (10%%)

Every sub-score is also 0-100. Copy each vendorId exactly as given in the proposals.

Respond ONLY with valid JSON:
{
  "rankings": [
    {
      "vendorId": "string",
      "vendorName": "string",
      "score": number,
      "priceScore": number,
      "deliveryScore": number,
      "complianceScore": number,
      "termsScore": number,
      "strengths": ["string"],
      "weaknesses": ["string"]
    }
  ],
  "recommendation": {
    "vendorId": "string",
    "vendorName": "string",
    "reasoning": "string"
  },
  "summary": "string"
}`

func buildStructurePrompt(input string) string {
	return fmt.Sprintf(structurePrompt, input)
}

func buildExtractPrompt(rfpContext any, email string) (string, error) {
	ctxJSON, err := json.MarshalIndent(rfpContext, "", "  ")
	if err != nil {
		return "", fmt.Errorf("marshal rfp context: %w", err)
	}
	return fmt.Sprintf(extractPrompt, ctxJSON, email), nil
}

func buildScorePrompt(rfp any, proposals any) (string, error) {
	rfpJSON, err := json.MarshalIndent(rfp, "", "  ")
	if err != nil {
		return "", fmt.Errorf("marshal rfp: %w", err)
	}
	propJSON, err := json.MarshalIndent(proposals, "", "  ")
	if err != nil {
		return "", fmt.Errorf("marshal proposals: %w", err)
	}
	return fmt.Sprintf(scorePrompt, rfpJSON, propJSON), nil
}
