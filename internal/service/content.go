package service

import (
	"context"
	"fmt"
	"net/url"
	"time"

	"PodSync/internal/config"
	"PodSync/internal/interfaces"
	"PodSync/internal/model"
	"PodSync/internal/repository"

	"github.com/sirupsen/logrus"
)

// ContentInput 创建/更新标牌内容的入参
type ContentInput struct {
	Title        string     `json:"title" binding:"required"`
	Description  string     `json:"description"`
	Body         string     `json:"body"`
	Type         string     `json:"type"`
	MediaURL     string     `json:"mediaUrl"`
	DisplayOrder *int       `json:"displayOrder"`
	IsActive     *bool      `json:"isActive"`
	StartDate    *time.Time `json:"startDate"`
	EndDate      *time.Time `json:"endDate"`
	CreatedBy    string     `json:"createdBy"`
}

var validContentTypes = map[string]bool{
	model.ContentTypeAnnouncement: true,
	model.ContentTypePromotion:    true,
	model.ContentTypeSchedule:     true,
	model.ContentTypeOther:        true,
}

// ContentService 数字标牌内容管理。
// 二维码不在本地生成，拼接外部图片服务地址即用即取
type ContentService struct {
	repo   *repository.ContentRepository
	logger *logrus.Logger
	clock  interfaces.Clock
	qrURL  string
	qrSize int
}

// NewContentService 创建标牌内容服务实例
func NewContentService(repo *repository.ContentRepository, cfg *config.Config, clock interfaces.Clock, logger *logrus.Logger) *ContentService {
	return &ContentService{
		repo:   repo,
		logger: logger,
		clock:  clock,
		qrURL:  cfg.Signage.QRServiceURL,
		qrSize: cfg.Signage.QRSize,
	}
}

// ListActive 当前可展示的内容（Unity 标牌轮播用）
func (s *ContentService) ListActive(ctx context.Context) ([]*model.SignageContent, error) {
	return s.repo.ListActive(ctx, s.clock.Now())
}

// ListAll 全部内容
func (s *ContentService) ListAll(ctx context.Context) ([]*model.SignageContent, error) {
	return s.repo.ListAll(ctx)
}

// Get 主键查询
func (s *ContentService) Get(ctx context.Context, id uint64) (*model.SignageContent, error) {
	return s.repo.GetByID(ctx, id)
}

// Create 创建内容，媒体链接存在时生成指向其的二维码地址
func (s *ContentService) Create(ctx context.Context, in ContentInput) (*model.SignageContent, error) {
	contentType := in.Type
	if contentType == "" {
		contentType = model.ContentTypeAnnouncement
	}
	if !validContentTypes[contentType] {
		return nil, fmt.Errorf("不支持的内容类型: %s", contentType)
	}
	if in.StartDate != nil && in.EndDate != nil && in.EndDate.Before(*in.StartDate) {
		return nil, fmt.Errorf("展示结束时间不能早于开始时间")
	}

	c := &model.SignageContent{
		Title:       in.Title,
		Description: in.Description,
		Body:        in.Body,
		Type:        contentType,
		MediaURL:    in.MediaURL,
		IsActive:    true,
		StartDate:   in.StartDate,
		EndDate:     in.EndDate,
		CreatedBy:   in.CreatedBy,
	}
	if in.DisplayOrder != nil {
		c.DisplayOrder = *in.DisplayOrder
	}
	if in.IsActive != nil {
		c.IsActive = *in.IsActive
	}
	if c.CreatedBy == "" {
		c.CreatedBy = "system"
	}
	if c.MediaURL != "" {
		c.QRCodeURL = s.buildQRCodeURL(c.MediaURL)
	}

	if err := s.repo.Create(ctx, c); err != nil {
		return nil, err
	}
	s.logger.WithFields(logrus.Fields{"id": c.ID, "type": c.Type}).Info("创建标牌内容")
	return c, nil
}

// Update 更新内容。媒体链接变化时同步刷新二维码
func (s *ContentService) Update(ctx context.Context, id uint64, in ContentInput) (*model.SignageContent, error) {
	if in.Type != "" && !validContentTypes[in.Type] {
		return nil, fmt.Errorf("不支持的内容类型: %s", in.Type)
	}

	updates := map[string]interface{}{
		"title":       in.Title,
		"description": in.Description,
		"body":        in.Body,
		"media_url":   in.MediaURL,
		"updated_at":  s.clock.Now(),
	}
	if in.Type != "" {
		updates["type"] = in.Type
	}
	if in.DisplayOrder != nil {
		updates["display_order"] = *in.DisplayOrder
	}
	if in.IsActive != nil {
		updates["is_active"] = *in.IsActive
	}
	if in.StartDate != nil {
		updates["start_date"] = in.StartDate
	}
	if in.EndDate != nil {
		updates["end_date"] = in.EndDate
	}
	if in.MediaURL != "" {
		updates["qr_code_url"] = s.buildQRCodeURL(in.MediaURL)
	}

	if err := s.repo.Update(ctx, id, updates); err != nil {
		return nil, err
	}
	return s.repo.GetByID(ctx, id)
}

// Delete 删除内容
func (s *ContentService) Delete(ctx context.Context, id uint64) error {
	if err := s.repo.Delete(ctx, id); err != nil {
		return err
	}
	s.logger.WithField("id", id).Info("删除标牌内容")
	return nil
}

// Reorder 批量调整展示顺序
func (s *ContentService) Reorder(ctx context.Context, items []repository.ContentOrderItem) error {
	return s.repo.UpdateDisplayOrders(ctx, items)
}

// Stats 内容统计
func (s *ContentService) Stats(ctx context.Context) (*repository.ContentStats, error) {
	return s.repo.Stats(ctx)
}

// RegenerateQRCode 重新生成指定内容的二维码地址
func (s *ContentService) RegenerateQRCode(ctx context.Context, id uint64) (*model.SignageContent, error) {
	c, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if c.MediaURL == "" {
		return nil, fmt.Errorf("内容无媒体链接, 无法生成二维码: %d", id)
	}
	updates := map[string]interface{}{
		"qr_code_url": s.buildQRCodeURL(c.MediaURL),
		"updated_at":  s.clock.Now(),
	}
	if err := s.repo.Update(ctx, id, updates); err != nil {
		return nil, err
	}
	return s.repo.GetByID(ctx, id)
}

// buildQRCodeURL 拼接外部二维码图片服务地址
func (s *ContentService) buildQRCodeURL(data string) string {
	q := url.Values{}
	q.Set("size", fmt.Sprintf("%dx%d", s.qrSize, s.qrSize))
	q.Set("data", data)
	return s.qrURL + "?" + q.Encode()
}
