package pipeline

import (
	"context"

	"github.com/cloudwego/eino/components/embedding"

	"resume-parser-go/internal/types"
)

// 管线的消费边界
// 摄取与嵌入由外部协作方实现，核心管线只依赖这两个接口的产出

// Ingestor 文档摄取边界：原始字节到归一化词元流
type Ingestor interface {
	// Ingest 解析文档字节，返回词元流与全文
	Ingest(ctx context.Context, data []byte, filename string) (*types.Document, error)
}

// Embedder 词元嵌入边界，与eino的embedding.Embedder兼容
type Embedder = embedding.Embedder
