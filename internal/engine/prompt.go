package engine

import "fmt"

// LLM prompt template — data only, no logic besides BuildPrompt.

// Section markers and field labels shared by the prompt and the parser.
const (
	markerInfo    = "=== 영상 정보 ==="
	markerSummary = "=== 요약 ==="
	markerBody    = "=== 전체 번역 ==="

	labelTitle    = "제목"
	labelChannel  = "채널"
	labelDuration = "길이"
)

// translatePrompt asks the model for a full translation in a fixed-section format.
// Args: target language name, URL, target language name, target language name.
const translatePrompt = `
다음 YouTube 영상의 음성을 %s로 번역해주세요.

YouTube URL: %s

번역 요구사항:
1. 영상의 전체 내용을 빠짐없이 번역해주세요.
2. 문맥을 고려하여 자연스러운 %s로 번역해주세요.
3. 전문 용어는 정확하게 번역하되, 필요시 원어를 병기해주세요. 예: 머신러닝(Machine Learning)
4. 화자가 여러 명인 경우, [화자 1], [화자 2] 등으로 구분해주세요.
5. 중요한 내용은 **굵게** 표시해주세요.
6. 시간 표시가 가능한 경우 [00:00] 형식으로 표시해주세요.

추가로 다음 정보도 포함해주세요:
- 영상 제목 (%s로 번역)
- 채널 이름
- 영상 길이
- 핵심 내용 3줄 요약

아래 섹션 제목과 라벨은 번역하지 말고 그대로 사용해주세요.

번역 형식:
` + markerInfo + `
` + labelTitle + `: [번역된 제목]
` + labelChannel + `: [채널명]
` + labelDuration + `: [영상 길이]

` + markerSummary + `
[3줄 요약]

` + markerBody + `
[전체 내용 번역]
`

// BuildPrompt renders the translation prompt for url and target language lang.
// Unknown languages fall back to DefaultLanguage.
func BuildPrompt(url, lang string) string {
	name, ok := languageNames[lang]
	if !ok {
		name = languageNames[DefaultLanguage]
	}
	return fmt.Sprintf(translatePrompt, name, url, name, name)
}
