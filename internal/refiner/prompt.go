package refiner

import (
	"fmt"
)

// refinePromptTemplate 精修提示词
// 要求模型仅基于原文修正基线记录，禁止引入原文之外的信息，
// 输出必须是单个JSON对象
const refinePromptTemplate = `You are a resume data verifier. You are given the raw text of a resume and a baseline JSON record extracted from it by a heuristic parser.

Your task: correct obvious extraction mistakes in the baseline record (wrong field assignment, truncated values, missing values that are clearly present in the raw text).

Strict rules:
1. Use ONLY information that appears verbatim in the raw text. Never invent, infer or embellish facts.
2. Keep the exact JSON structure and key names of the baseline record.
3. Dates must stay in YYYY-MM or YYYY form.
4. If you are not sure about a correction, keep the baseline value.
5. Output a single JSON object and nothing else. No explanations, no markdown fences.

Baseline record:
%s

Raw resume text:
%s

Corrected JSON record:`

// BuildPrompt 组装精修提示词
func BuildPrompt(baselineJSON []byte, rawText string) string {
	return fmt.Sprintf(refinePromptTemplate, string(baselineJSON), rawText)
}
