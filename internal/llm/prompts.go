package llm

import "strings"

const itemShape = "Each object must have these fields:\n" +
	"- \"amount\": number (e.g. 10.50)\n" +
	"- \"category\": string (short label such as Food, Transport, Salary)\n" +
	"- \"description\": string (may be empty)\n" +
	"- \"type\": \"expense\" or \"income\"\n\n"

const outputRules = "Rules:\n" +
	"- Extract ALL expenses and incomes mentioned, one object each.\n" +
	"- If nothing resembling a transaction is mentioned, return [].\n" +
	"- Output STRICT JSON only: a JSON array of objects, no comments, no extra text.\n" +
	"- Do NOT wrap the response in code fences.\n" +
	"- Output must begin with \"[\" and end with \"]\".\n"

// TextInstructions asks the model to extract every transaction in the
// message sent alongside it.
func TextInstructions() string {
	return "You are a personal finance assistant.\n\n" +
		"Analyze the user's message that follows these instructions.\n\n" +
		"Task:\n- Return a JSON array of transaction objects.\n\n" +
		itemShape + outputRules
}

// AudioInstructions asks the model to listen to the attached voice note and
// extract every transaction spoken in it.
func AudioInstructions() string {
	return "You are a personal finance assistant.\n\n" +
		"Listen to the attached voice note and extract (or infer) every " +
		"transaction the speaker mentions.\n\n" +
		"Task:\n- Return a JSON array of transaction objects.\n\n" +
		itemShape + outputRules
}

// CleanJSON strips ```json / ``` fences and surrounding whitespace from a
// model answer.
func CleanJSON(raw string) string {
	s := strings.TrimSpace(raw)

	if strings.HasPrefix(s, "```") {
		// Drop the opening fence line (``` or ```json).
		if idx := strings.Index(s, "\n"); idx != -1 {
			s = s[idx+1:]
		} else {
			s = strings.TrimPrefix(strings.TrimPrefix(s, "```json"), "```")
		}
	}

	s = strings.TrimSpace(s)
	s = strings.TrimSuffix(s, "```")
	return strings.TrimSpace(s)
}
