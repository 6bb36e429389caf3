package notify

import (
	"context"
	"encoding/base64"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"github.com/park285/cheese-montecarlo/internal/domain"
)

// RoomNotifier posts a run summary, and optionally the chart, to one room.
type RoomNotifier struct {
	client  *Client
	room    string
	summary func(domain.ResultTable) string
	chart   func(domain.ResultTable) ([]byte, error)
	logger  *zap.Logger
}

func NewRoomNotifier(client *Client, room string, summary func(domain.ResultTable) string, chart func(domain.ResultTable) ([]byte, error), logger *zap.Logger) *RoomNotifier {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &RoomNotifier{
		client:  client,
		room:    strings.TrimSpace(room),
		summary: summary,
		chart:   chart,
		logger:  logger,
	}
}

func (n *RoomNotifier) Name() string { return "notify" }

// Save sends the summary text, then the chart image when one renders.
func (n *RoomNotifier) Save(ctx context.Context, table domain.ResultTable) error {
	if n == nil || n.client == nil || n.room == "" {
		return nil
	}
	if n.summary != nil {
		if text := strings.TrimSpace(n.summary(table)); text != "" {
			if err := n.client.SendMessage(ctx, n.room, text); err != nil {
				return fmt.Errorf("send summary: %w", err)
			}
		}
	}
	if n.chart == nil {
		return nil
	}
	img, err := n.chart(table)
	if err != nil {
		n.logger.Warn("notify_chart_skipped", zap.Error(err))
		return nil
	}
	if err := n.client.SendImage(ctx, n.room, base64.StdEncoding.EncodeToString(img)); err != nil {
		return fmt.Errorf("send chart: %w", err)
	}
	return nil
}
