package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/spf13/pflag"

	"resume-parser-go/internal/api/handler"
	"resume-parser-go/internal/config"
	"resume-parser-go/internal/constants"
	"resume-parser-go/internal/logger"
	"resume-parser-go/internal/pipeline"
	"resume-parser-go/internal/storage"
)

// parsecli 离线解析工具：读取词元流JSON，输出结构化简历记录JSON
// 默认不接任何存储后端；--save 时按配置持久化，与HTTP入口行为一致
func main() {
	var (
		inputPath  string
		outputPath string
		configPath string
		save       bool
	)
	pflag.StringVarP(&inputPath, "input", "i", "", "输入文档JSON路径（含tokens与raw_text），- 表示stdin")
	pflag.StringVarP(&outputPath, "output", "o", "", "输出记录JSON路径，默认stdout")
	pflag.StringVarP(&configPath, "config", "c", "", "配置文件路径")
	pflag.BoolVar(&save, "save", false, "解析后按配置持久化结果")
	pflag.Parse()

	if inputPath == "" {
		fmt.Fprintln(os.Stderr, "用法: parsecli -i <document.json> [-o <record.json>] [-c <config.yaml>] [--save]")
		os.Exit(2)
	}

	cfg, err := config.LoadConfig(configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "加载配置失败: %v\n", err)
		os.Exit(1)
	}
	logger.Init(logger.Config{
		Level:      cfg.Logger.Level,
		Format:     "pretty",
		TimeFormat: cfg.Logger.TimeFormat,
	})

	var data []byte
	if inputPath == "-" {
		data, err = io.ReadAll(os.Stdin)
	} else {
		data, err = os.ReadFile(inputPath)
	}
	if err != nil {
		logger.Fatal().Err(err).Msg("读取输入文档失败")
	}

	var req handler.ParseRequest
	if err := json.Unmarshal(data, &req); err != nil {
		logger.Fatal().Err(err).Msg("输入文档JSON解析失败")
	}
	if req.Source == "" {
		req.Source = inputPath
	}
	req.SourceChannel = constants.SourceChannelCLI

	ctx := context.Background()

	var storageManager *storage.Storage
	if save {
		storageManager, err = storage.NewStorage(ctx, cfg)
		if err != nil {
			logger.Fatal().Err(err).Msg("初始化存储失败")
		}
		defer storageManager.Close()
	}

	parser := pipeline.NewParser(cfg, nil, nil)
	parseHandler := handler.NewParseHandler(cfg, storageManager, parser)

	resp, err := parseHandler.HandleParse(ctx, &req)
	if err != nil {
		logger.Fatal().Err(err).Msg("解析失败")
	}

	logger.Info().
		Str("submission_uuid", resp.SubmissionUUID).
		Str("status", resp.Status).
		Int("warning_count", resp.WarningCount).
		Bool("deduplicated", resp.Deduplicated).
		Msg("解析完成")

	out, err := json.MarshalIndent(resp.Record, "", "  ")
	if err != nil {
		logger.Fatal().Err(err).Msg("序列化解析记录失败")
	}
	out = append(out, '\n')

	if outputPath == "" || outputPath == "-" {
		if _, err := os.Stdout.Write(out); err != nil {
			logger.Fatal().Err(err).Msg("写入stdout失败")
		}
		return
	}
	if err := os.WriteFile(outputPath, out, 0644); err != nil {
		logger.Fatal().Err(err).Msg("写入输出文件失败")
	}
}
