package notifier

import (
	"fmt"
	"html"
	"strings"

	"SignalBoard/internal/config"
	"SignalBoard/internal/model"
)

const tsLayout = "2006-01-02 15:04"

func signalIcon(k model.SignalKind) string {
	if k == model.SignalBuy {
		return "🟢"
	}
	return "🔴"
}

// FormatSignalAlert formats a freshly formed signal for Telegram.
func FormatSignalAlert(a *model.Analysis) string {
	sig := a.Summary.LastSignal
	if sig == nil {
		return ""
	}
	var b strings.Builder
	b.WriteString(fmt.Sprintf("%s <b>%s %s</b> | %s (%s)\n\n",
		signalIcon(sig.Kind), sig.Kind, html.EscapeString(a.Symbol), a.Strategy, a.Interval))
	b.WriteString(fmt.Sprintf("Bar: %s\n", sig.Time.Format(tsLayout)))
	b.WriteString(fmt.Sprintf("Close: %.2f\n", a.Summary.LastClose))
	writeIndicators(&b, a, sig.Index)
	b.WriteString("\n<i>Rule-based signal, not financial advice.</i>")
	return b.String()
}

func writeIndicators(b *strings.Builder, a *model.Analysis, i int) {
	for _, s := range []model.Series{a.SMAFast, a.SMASlow, a.RSI} {
		if v, ok := s.At(i); ok {
			b.WriteString(fmt.Sprintf("%s: %.2f\n", s.Name, v))
		} else {
			b.WriteString(fmt.Sprintf("%s: n/a\n", s.Name))
		}
	}
}

// FormatAnalysisSummary answers the /signal command.
func FormatAnalysisSummary(a *model.Analysis) string {
	var b strings.Builder
	b.WriteString(fmt.Sprintf("📈 <b>%s</b> | %s | %s\n\n", html.EscapeString(a.Symbol), a.Interval, a.Strategy))
	b.WriteString(fmt.Sprintf("Bars: %d (%s → %s)\n", a.Summary.BarCount,
		a.Summary.From.Format(tsLayout), a.Summary.To.Format(tsLayout)))
	b.WriteString(fmt.Sprintf("Close: %.2f | High: %.2f | Low: %.2f\n",
		a.Summary.LastClose, a.Summary.PeriodHigh, a.Summary.PeriodLow))
	writeIndicators(&b, a, len(a.Bars)-1)

	if sig := a.Summary.LastSignal; sig != nil {
		b.WriteString(fmt.Sprintf("\nLast signal: %s %s • %s (%d total)",
			signalIcon(sig.Kind), sig.Kind, sig.Time.Format(tsLayout), len(a.Signals)))
	} else {
		b.WriteString("\nNo signals detected over the period.")
	}
	return b.String()
}

// FormatWatchList lists the configured watch items.
func FormatWatchList(items []config.WatchItem) string {
	if len(items) == 0 {
		return "Watch list is empty."
	}
	var b strings.Builder
	b.WriteString("👀 <b>Watch list</b>\n\n")
	for _, it := range items {
		b.WriteString(fmt.Sprintf("• %s %s: %s (SMA %d/%d, RSI %d)\n",
			html.EscapeString(it.Symbol), it.Interval, it.Strategy, it.Fast, it.Slow, it.RSIPeriod))
	}
	return b.String()
}

// HelpText lists the supported bot commands.
func HelpText() string {
	return "Available commands:\n" +
		"• /signal &lt;pair&gt; [interval] - latest SMA/RSI signal\n" +
		"• /watchlist - pairs scanned on schedule\n" +
		"• /help - this message"
}
