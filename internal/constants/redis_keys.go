package constants

// Redis Key 前缀和格式常量
// 统一命名规范: app:{module}:{entity}:{unique_id}
const (
	// AppPrefix 所有Redis Key的统一应用前缀
	AppPrefix = "app"

	// ParseModulePrefix 解析模块
	ParseModulePrefix = "parse"

	// EntityMD5ToUUID 原文MD5到提交UUID的映射实体
	EntityMD5ToUUID = "md5_to_uuid"
	// EntityRecord 解析结果缓存实体
	EntityRecord = "record"

	// KeyRawTextMD5ToUUID 原文MD5去重映射 (STRING)
	// 格式: app:parse:md5_to_uuid:{md5}
	KeyRawTextMD5ToUUID = AppPrefix + ":" + ParseModulePrefix + ":" + EntityMD5ToUUID + ":%s"

	// KeyParsedRecord 解析结果JSON缓存 (STRING)
	// 格式: app:parse:record:{submission_uuid}
	KeyParsedRecord = AppPrefix + ":" + ParseModulePrefix + ":" + EntityRecord + ":%s"
)
