// Package prompt builds the instructions sent to a model provider for each
// operation.
package prompt

import (
	"fmt"
	"strings"
)

const (
	DefaultLanguage       = "javascript"
	DefaultComplexity     = "intermediate"
	DefaultSourceLanguage = "javascript"
	DefaultTargetLanguage = "python"
)

const generationTemplate = `You are a code generator that produces ONLY code, nothing extra such as examples or excessive error handling.
The response will be pasted directly into a code editor, so it must be ready to run without modification.
The code should be easy to understand and maintain.
You will be given a task to implement in a specific programming language at a certain complexity level.
Return the code in a single code block with the appropriate syntax for the language.
Do not include any explanations, comments, or additional text outside of the code block.
The code should be clean and follow the best practices of the language.

Task: %[1]s

Requirements:
- Language: %[2]s
- Complexity: %[3]s
- Include only essential comments that explain complex logic
- Follow best practices for %[2]s
- Make the code clean and concise
- Do NOT include usage examples
- Do NOT include explanatory text outside the code
- Do NOT include console.log statements unless specifically requested
- Do NOT include commented out code
- Do NOT include any text outside of the code block

Your entire response must be ONLY a code block with the appropriate syntax, nothing else.
`

const translationTemplate = `Translate the following code from %[2]s to %[3]s.
Keep the same functionality and logic while following %[3]s conventions and best practices.
Return only the translated code in a code block with the appropriate syntax for %[3]s.
Do not include any explanations or additional text outside the code block.

Source Code (%[2]s):
%[1]s

Translate to %[3]s:
`

const optimizationTemplate = `Analyze and optimize the following %[2]s code. Provide specific optimization suggestions including:
1. Performance improvements
2. Code readability enhancements
3. Best practices recommendations
4. Security considerations (if applicable)
5. Memory usage optimizations

Provide both the optimized code and a brief explanation of the changes made.

Original Code:
%[1]s

Please provide:
1. The optimized code in a code block
2. A brief explanation of the optimizations made
`

const explanationPrefix = "Explain this code in clear, concise terms:\n\n"

// Generation builds the code generation prompt. Empty language or complexity
// fall back to DefaultLanguage and DefaultComplexity.
func Generation(task, language, complexity string) string {
	return fmt.Sprintf(generationTemplate, task,
		orDefault(language, DefaultLanguage),
		orDefault(complexity, DefaultComplexity))
}

// Translation builds the prompt for translating code between languages.
func Translation(code, sourceLanguage, targetLanguage string) string {
	return fmt.Sprintf(translationTemplate, code,
		orDefault(sourceLanguage, DefaultSourceLanguage),
		orDefault(targetLanguage, DefaultTargetLanguage))
}

// Optimization asks for optimized code plus a short explanation, so the
// response is expected to contain prose around the code block.
func Optimization(code, language string) string {
	return fmt.Sprintf(optimizationTemplate, code, orDefault(language, DefaultLanguage))
}

// Explanation asks for a plain-language walkthrough of code or a question.
func Explanation(code string) string {
	return explanationPrefix + code
}

func orDefault(v, def string) string {
	if strings.TrimSpace(v) == "" {
		return def
	}
	return v
}
