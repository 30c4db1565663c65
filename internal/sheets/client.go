package sheets

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"

	"PodSync/internal/config"
	"PodSync/internal/interfaces"
	"PodSync/internal/utils/httpclient"

	"github.com/sirupsen/logrus"
)

// Client Google Sheets 数据源实现（values.get REST接口 + API Key认证）
type Client struct {
	cfg    *config.SheetsConfig
	http   *http.Client
	logger *logrus.Logger
}

// NewClient 创建 Sheets 客户端
func NewClient(cfg *config.SheetsConfig, logger *logrus.Logger) interfaces.SheetSource {
	return &Client{
		cfg: cfg,
		http: httpclient.New(httpclient.Options{
			Timeout: cfg.Timeout,
			Proxy:   cfg.Proxy,
		}, logger),
		logger: logger,
	}
}

// valuesResponse values.get 响应体
type valuesResponse struct {
	Range          string     `json:"range"`
	MajorDimension string     `json:"majorDimension"`
	Values         [][]string `json:"values"`
}

// FetchRows 拉取配置范围内的全部数据行（范围从第2行起，已跳过表头）
func (c *Client) FetchRows(ctx context.Context) ([]interfaces.SheetRow, error) {
	if c.cfg.SpreadsheetID == "" || c.cfg.APIKey == "" {
		return nil, fmt.Errorf("Sheets 凭据未配置（需要 spreadsheet_id 与 api_key）")
	}

	// 范围格式：'Form Responses 1'!A2:N
	fullRange := fmt.Sprintf("'%s'!%s", c.cfg.SheetName, c.cfg.Range)
	reqURL := fmt.Sprintf("%s/v4/spreadsheets/%s/values/%s?key=%s",
		c.cfg.BaseURL,
		url.PathEscape(c.cfg.SpreadsheetID),
		url.PathEscape(fullRange),
		url.QueryEscape(c.cfg.APIKey),
	)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, nil)
	if err != nil {
		return nil, fmt.Errorf("构建Sheets请求失败: %w", err)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("请求Sheets失败: %w", err)
	}
	defer func() {
		_ = resp.Body.Close()
	}()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 2048))
		return nil, fmt.Errorf("Sheets返回异常状态 %d: %s", resp.StatusCode, string(body))
	}

	var vr valuesResponse
	if err := json.NewDecoder(resp.Body).Decode(&vr); err != nil {
		return nil, fmt.Errorf("解析Sheets响应失败: %w", err)
	}

	rows := make([]interfaces.SheetRow, 0, len(vr.Values))
	for _, v := range vr.Values {
		rows = append(rows, interfaces.SheetRow(v))
	}
	c.logger.Infof("Sheets拉取完成，共%d行", len(rows))
	return rows, nil
}
