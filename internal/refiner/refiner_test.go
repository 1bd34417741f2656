package refiner

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/cloudwego/eino/components/model"
	einoschema "github.com/cloudwego/eino/schema"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"resume-parser-go/internal/schema"
)

// 测试用聊天模型模拟器
type mockChatModel struct {
	mockResponse string
	mockErr      error
}

func (m *mockChatModel) Generate(ctx context.Context, messages []*einoschema.Message, options ...model.Option) (*einoschema.Message, error) {
	if m.mockErr != nil {
		return nil, m.mockErr
	}
	return &einoschema.Message{
		Role:    einoschema.RoleType("assistant"),
		Content: m.mockResponse,
	}, nil
}

func (m *mockChatModel) Stream(ctx context.Context, messages []*einoschema.Message, options ...model.Option) (*einoschema.StreamReader[*einoschema.Message], error) {
	return nil, nil
}

func (m *mockChatModel) WithTools(tools []*einoschema.ToolInfo) (model.ToolCallingChatModel, error) {
	return m, nil
}

func (m *mockChatModel) BindTools(tools []*einoschema.ToolInfo) error {
	return nil
}

const testRawText = `Jane Doe
jane.doe@example.com
Experience
Software Engineer at Acme Corp, March 2019 - Present
Skills
Python, Go`

func baselineRecord() *schema.ResumeRecord {
	record := schema.NewResumeRecord("test.pdf")
	record.Contact.Name = schema.Str("Jane Doe")
	record.Contact.Email = schema.Str("jane.doe@example.com")
	record.Skills = []schema.Skill{{Name: "Python"}, {Name: "Go"}}
	return record
}

// TestRefineAccepted 输出与原文一致时精修被接受
func TestRefineAccepted(t *testing.T) {
	response := "```json\n" + `{
		"contact": {"name": "Jane Doe", "email": "jane.doe@example.com"},
		"skills": [{"name": "Python"}, {"name": "Go"}],
		"work_experience": [{"company": "Acme Corp", "position": "Software Engineer"}]
	}` + "\n```"
	r := New(NewChatModelTransport(&mockChatModel{mockResponse: response}, 5*time.Second, 0))

	outcome := r.Refine(context.Background(), baselineRecord(), testRawText)

	require.Equal(t, StatusAccepted, outcome.Status)
	require.Len(t, outcome.Record.WorkExperience, 1)
	assert.Equal(t, "Acme Corp", schema.Deref(outcome.Record.WorkExperience[0].Company))
	// meta来自基线而非模型输出
	assert.Equal(t, "test.pdf", outcome.Record.Meta.Source)
}

// TestRefineRejectedByGate 引入原文之外的叶子值时整体拒绝并回落基线
func TestRefineRejectedByGate(t *testing.T) {
	response := `{
		"contact": {"name": "Jane Doe"},
		"skills": [{"name": "Python"}],
		"work_experience": [{"company": "Globex Fabrications"}]
	}`
	r := New(NewChatModelTransport(&mockChatModel{mockResponse: response}, 5*time.Second, 0))
	baseline := baselineRecord()

	outcome := r.Refine(context.Background(), baseline, testRawText)

	require.Equal(t, StatusRejectedByGate, outcome.Status)
	assert.Same(t, baseline, outcome.Record)
	assert.Contains(t, outcome.Reason, "Globex")
}

// TestRefineUnavailableOnTransportError 传输失败回落基线，不向上传播错误
func TestRefineUnavailableOnTransportError(t *testing.T) {
	r := New(NewChatModelTransport(&mockChatModel{mockErr: errors.New("connection refused")}, time.Second, 0))
	baseline := baselineRecord()

	outcome := r.Refine(context.Background(), baseline, testRawText)

	require.Equal(t, StatusUnavailable, outcome.Status)
	assert.Same(t, baseline, outcome.Record)
}

// TestRefineUnavailableOnGarbageOutput 输出无JSON时回落基线
func TestRefineUnavailableOnGarbageOutput(t *testing.T) {
	r := New(NewChatModelTransport(&mockChatModel{mockResponse: "I cannot help with that."}, time.Second, 0))
	baseline := baselineRecord()

	outcome := r.Refine(context.Background(), baseline, testRawText)

	require.Equal(t, StatusUnavailable, outcome.Status)
	assert.Same(t, baseline, outcome.Record)
}

// TestRefineDisabled 未配置通道时直接返回Unavailable
func TestRefineDisabled(t *testing.T) {
	r := New(nil)
	baseline := baselineRecord()

	outcome := r.Refine(context.Background(), baseline, testRawText)

	assert.Equal(t, StatusUnavailable, outcome.Status)
	assert.Same(t, baseline, outcome.Record)
	assert.False(t, r.Enabled())
}

// TestExtractJSONForms 代码围栏与花括号配对两种提取路径
func TestExtractJSONForms(t *testing.T) {
	fenced := "Here you go:\n```json\n{\"a\": 1}\n```"
	assert.Equal(t, `{"a": 1}`, extractJSON(fenced))

	prose := `The corrected record is {"a": {"b": 2}} as requested.`
	assert.Equal(t, `{"a": {"b": 2}}`, extractJSON(prose))

	assert.Empty(t, extractJSON("no json here"))
	assert.Empty(t, extractJSON("unbalanced { brace"))
}

// TestSanitizeDropsUnknownKeysAndTolerantShapes 白名单净化与走样形态容忍
func TestSanitizeDropsUnknownKeysAndTolerantShapes(t *testing.T) {
	payload := `{
		"contact": {"name": "Jane Doe", "ssn": "000-00-0000"},
		"skills": ["Python", {"name": "Go", "category": "Backend"}],
		"languages": ["English"],
		"injected_key": {"evil": true}
	}`
	record, err := sanitizePayload(payload)
	require.NoError(t, err)

	assert.Equal(t, "Jane Doe", schema.Deref(record.Contact.Name))
	require.Len(t, record.Skills, 2)
	assert.Equal(t, "Python", record.Skills[0].Name)
	assert.Equal(t, "Backend", schema.Deref(record.Skills[1].Category))
	require.Len(t, record.Languages, 1)
	assert.Equal(t, "English", schema.Deref(record.Languages[0].Name))
}

// TestGateWhitespaceNormalizedSubstring 原文子串按空白归一化比较
func TestGateWhitespaceNormalizedSubstring(t *testing.T) {
	baseline := schema.NewResumeRecord("x")
	candidate := schema.NewResumeRecord("x")
	candidate.Contact.Name = schema.Str("Jane   Doe")

	_, ok := checkNoNewFacts(candidate, baseline, "resume of Jane\nDoe follows")
	assert.True(t, ok)

	candidate.Contact.Name = schema.Str("John Roe")
	leaf, ok := checkNoNewFacts(candidate, baseline, "resume of Jane Doe follows")
	assert.False(t, ok)
	assert.Equal(t, "John Roe", leaf)
}
