package constants

// 解析结果处理状态
const (
	// StatusParsed 启发式解析完成
	StatusParsed = "PARSED"
	// StatusRefined 精修结果通过门控并已替换基线
	StatusRefined = "REFINED"
	// StatusRefineRejected 精修结果被门控拒绝，保留基线
	StatusRefineRejected = "REFINE_REJECTED"
	// StatusRefineUnavailable 精修服务不可用，保留基线
	StatusRefineUnavailable = "REFINE_UNAVAILABLE"
)

// 默认来源渠道
const (
	// SourceChannelUpload Web上传
	SourceChannelUpload = "web_upload"
	// SourceChannelCLI 命令行工具
	SourceChannelCLI = "cli"
)
