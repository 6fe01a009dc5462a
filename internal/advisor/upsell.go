package advisor

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"swiftpos/internal/models"
	"swiftpos/internal/util"

	"go.uber.org/zap"
)

const shiftLogWindow = 10

// Suggest asks the model for upsell ideas based on the cart and active promotions
func (c *Client) Suggest(ctx context.Context, lines []models.LineItem, promotions []models.Promotion) string {
	ctx, span := util.StartSpan(ctx, "Advisor.Suggest")
	defer span.End()

	start := time.Now()
	defer func() {
		util.UpsellLatency.Observe(time.Since(start).Seconds())
	}()

	if !c.Configured() {
		util.UpsellRequestsTotal.WithLabelValues("not_configured").Inc()
		return FallbackNotConfigured
	}

	text, err := c.generate(ctx, UpsellPrompt(lines, promotions))
	switch {
	case errors.Is(err, errEmptyResponse):
		util.UpsellRequestsTotal.WithLabelValues("empty").Inc()
		return FallbackNoSuggestions
	case err != nil:
		c.logger.Error("Upsell advisor call failed", zap.Error(err))
		util.UpsellRequestsTotal.WithLabelValues("error").Inc()
		return FallbackUpsellFailed
	}

	util.UpsellRequestsTotal.WithLabelValues("success").Inc()
	return text
}

// AnalyzeShift summarises the most recent audit lines in one sentence
func (c *Client) AnalyzeShift(ctx context.Context, logs []string) string {
	ctx, span := util.StartSpan(ctx, "Advisor.AnalyzeShift")
	defer span.End()

	if !c.Configured() {
		return FallbackNotConfigured
	}

	text, err := c.generate(ctx, ShiftPrompt(logs))
	switch {
	case errors.Is(err, errEmptyResponse):
		return FallbackAnalysisEmpty
	case err != nil:
		c.logger.Warn("Shift analysis call failed", zap.Error(err))
		return FallbackAnalysisFailed
	}
	return text
}

// CartDescription renders lines as "{qty}x {name}" joined by commas
func CartDescription(lines []models.LineItem) string {
	parts := make([]string, 0, len(lines))
	for _, l := range lines {
		parts = append(parts, fmt.Sprintf("%dx %s", l.Quantity, l.Name))
	}
	return strings.Join(parts, ", ")
}

// ActivePromotionTitles joins the titles of active promotions
func ActivePromotionTitles(promotions []models.Promotion) string {
	titles := make([]string, 0, len(promotions))
	for _, p := range promotions {
		if p.IsActive {
			titles = append(titles, p.Title)
		}
	}
	return strings.Join(titles, ", ")
}

// UpsellPrompt builds the upsell instruction text
func UpsellPrompt(lines []models.LineItem, promotions []models.Promotion) string {
	cart := CartDescription(lines)
	if cart == "" {
		cart = "Empty"
	}
	promos := ActivePromotionTitles(promotions)
	if promos == "" {
		promos = "None"
	}

	return fmt.Sprintf(`You are a helpful Point of Sale Assistant.
Current Cart: %s
Active Promotions: %s

Based on the current cart, suggest 2 specific items to upsell to the customer.
Keep it brief (max 2 sentences).
If the cart is empty, suggest a popular starter item.
Mention an active promotion if relevant.`, cart, promos)
}

// ShiftPrompt builds the shift analysis instruction from the newest log lines
func ShiftPrompt(logs []string) string {
	if len(logs) > shiftLogWindow {
		logs = logs[len(logs)-shiftLogWindow:]
	}
	return fmt.Sprintf(`Analyze these audit logs from a POS session and provide a brief 1-sentence summary of the activity level and any anomalies.
Logs:
%s`, strings.Join(logs, "\n"))
}
