package quizgen

import "strings"

const quizPromptTemplate = `You are a quiz generation system. You must return ONLY a single valid JSON object, nothing else.

Article Title: {title}

Article Content:
{content}

Generate a quiz with 5-7 questions in this EXACT format (copy this structure exactly):

{
  "summary": "Write a 2-3 sentence summary of the article here",
  "key_entities": {
    "people": ["List important people mentioned"],
    "organizations": ["List important organizations"],
    "locations": ["List important locations"]
  },
  "sections": ["List main section titles from article"],
  "quiz": [
    {
      "question": "Write question here?",
      "options": ["First option", "Second option", "Third option", "Fourth option"],
      "answer": "First option",
      "difficulty": "easy",
      "explanation": "Explain why this answer is correct based on the article"
    }
  ],
  "related_topics": ["Related topic 1", "Related topic 2", "Related topic 3", "Related topic 4", "Related topic 5"]
}

CRITICAL RULES:
- Return ONLY the JSON object above with your content filled in
- Generate 5-7 questions total
- Each question MUST have exactly 4 options, all different from each other
- The "answer" field MUST exactly match one of the options, character for character
- Difficulty must be "easy", "medium", or "hard"
- Use ONLY facts stated in the article content above; do not add outside knowledge
- Every explanation must be supported by the article content
- Do NOT write anything before the JSON
- Do NOT write anything after the JSON
- Do NOT create multiple JSON objects
- Make sure all JSON is valid (proper quotes, commas, brackets)

Return the JSON now:`

// BuildPrompt interpolates the article into the fixed quiz template.
// Placeholders are substituted in a single pass so braces inside the article are left alone.
func BuildPrompt(title, content string) string {
	r := strings.NewReplacer("{title}", title, "{content}", content)
	return r.Replace(quizPromptTemplate)
}
