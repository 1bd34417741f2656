package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// TestLoadConfigFromFile 验证YAML配置文件能被正确加载并补齐默认值
func TestLoadConfigFromFile(t *testing.T) {
	yamlContent := `
server:
  address: ":9090"
  api_keys:
    - "key-one"
    - "key-two"
pipeline:
  bbox_scale: 1000
  column_gap: 150
segmenter:
  heading_threshold: 0.8
  lexicon:
    education:
      - keyword: "education"
        weight: 1.0
refiner:
  enabled: true
  endpoint: "http://localhost:8000/generate"
  max_tokens: 1024
mysql:
  host: "db.internal"
  port: 3306
tracing:
  enabled: true
  endpoint: "otel-collector:4317"
  sample_ratio: 0.5
`
	tmpDir, err := os.MkdirTemp("", "config-test")
	require.NoError(t, err, "无法创建临时目录")
	defer os.RemoveAll(tmpDir)

	configPath := filepath.Join(tmpDir, "config.yaml")
	err = os.WriteFile(configPath, []byte(yamlContent), 0644)
	require.NoError(t, err, "无法写入临时配置文件")

	cfg, err := LoadConfigFromFileOnly(configPath)
	require.NoError(t, err)
	require.NotNil(t, cfg)

	assert.Equal(t, ":9090", cfg.Server.Address)
	assert.Equal(t, []string{"key-one", "key-two"}, cfg.Server.APIKeys)
	assert.Equal(t, 150, cfg.Pipeline.ColumnGap)
	assert.Equal(t, 0.8, cfg.Segmenter.HeadingThreshold)
	assert.True(t, cfg.Refiner.Enabled)
	assert.Equal(t, 1024, cfg.Refiner.MaxTokens)
	assert.Equal(t, "db.internal", cfg.MySQL.Host)
	assert.True(t, cfg.Tracing.Enabled)
	assert.Equal(t, "otel-collector:4317", cfg.Tracing.Endpoint)
	assert.Equal(t, 0.5, cfg.Tracing.SampleRatio)

	// 文件未提供的字段由默认值补齐
	assert.Equal(t, 3, cfg.Pipeline.MaxColumns)
	assert.Equal(t, 0.35, cfg.Segmenter.ShortLineBonus)
	assert.Equal(t, 4, cfg.Segmenter.MaxHeadingTokens)
	assert.Equal(t, "60s", cfg.Refiner.Timeout)
	assert.Equal(t, "heuristic-v1", cfg.ActiveParserVersion)
}

// TestLoadConfigLexiconOverride 文件提供词典时不再使用默认词典
func TestLoadConfigLexiconOverride(t *testing.T) {
	yamlContent := `
segmenter:
  lexicon:
    skills:
      - keyword: "kompetenzen"
        weight: 1.0
`
	tmpDir, err := os.MkdirTemp("", "config-test-lexicon")
	require.NoError(t, err)
	defer os.RemoveAll(tmpDir)

	configPath := filepath.Join(tmpDir, "config.yaml")
	require.NoError(t, os.WriteFile(configPath, []byte(yamlContent), 0644))

	cfg, err := LoadConfigFromFileOnly(configPath)
	require.NoError(t, err)

	require.Len(t, cfg.Segmenter.Lexicon, 1)
	rules := cfg.Segmenter.Lexicon["skills"]
	require.Len(t, rules, 1)
	assert.Equal(t, "kompetenzen", rules[0].Keyword)
	assert.Equal(t, 1.0, rules[0].Weight)
}

// TestDefaultLexiconCoversAllLabels 默认词典覆盖全部章节标签
func TestDefaultLexiconCoversAllLabels(t *testing.T) {
	lexicon := DefaultLexicon()
	for _, label := range []string{
		"contact", "education", "experience", "skills",
		"certifications", "projects", "publications", "languages",
	} {
		rules, ok := lexicon[label]
		assert.True(t, ok, "默认词典缺少标签 %s", label)
		assert.NotEmpty(t, rules, "标签 %s 的规则列表为空", label)
		for _, rule := range rules {
			assert.Greater(t, rule.Weight, 0.0)
			assert.LessOrEqual(t, rule.Weight, 1.0)
		}
	}
}

// TestEnvOverrides 环境变量覆盖文件中的精修配置
func TestEnvOverrides(t *testing.T) {
	yamlContent := `
refiner:
  enabled: false
  endpoint: "http://from-file/generate"
`
	tmpDir, err := os.MkdirTemp("", "config-test-env")
	require.NoError(t, err)
	defer os.RemoveAll(tmpDir)

	configPath := filepath.Join(tmpDir, "config.yaml")
	require.NoError(t, os.WriteFile(configPath, []byte(yamlContent), 0644))

	t.Setenv("REFINER_ENDPOINT", "http://from-env/generate")
	t.Setenv("ENABLE_REFINER", "true")

	cfg, err := LoadConfig(configPath)
	require.NoError(t, err)

	assert.Equal(t, "http://from-env/generate", cfg.Refiner.Endpoint)
	assert.True(t, cfg.Refiner.Enabled)
}

// TestGetDuration 时长解析失败时回退到默认值
func TestGetDuration(t *testing.T) {
	assert.Equal(t, 30*time.Second, GetDuration("30s", time.Minute))
	assert.Equal(t, time.Minute, GetDuration("", time.Minute))
	assert.Equal(t, time.Minute, GetDuration("not-a-duration", time.Minute))
}

// TestMissingConfigFileFails 指定路径不存在时报错
func TestMissingConfigFileFails(t *testing.T) {
	_, err := LoadConfigFromFileOnly("/nonexistent/config.yaml")
	assert.Error(t, err)
}
