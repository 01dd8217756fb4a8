// Package sender delivers normalized failed payments to the notification
// sinks. The sinks are independent: one failing never stops the other, and
// neither failure surfaces to the webhook response.
package sender

import (
	"context"
	"fmt"
	"strings"
	"sync"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/weaveworks/payment-notifier/common"
	"github.com/weaveworks/payment-notifier/diaglog"
	"github.com/weaveworks/payment-notifier/event"
)

var (
	notificationsTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: common.PrometheusNamespace,
		Name:      "notifications_total",
		Help:      "Total number of notifications attempted per sink.",
	}, []string{"sink"})

	notificationsError = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: common.PrometheusNamespace,
		Name:      "notification_errors_total",
		Help:      "Total number of notification delivery failures per sink.",
	}, []string{"sink"})
)

func init() {
	prometheus.MustRegister(notificationsTotal, notificationsError)
}

// AlertSender delivers a human-readable alert about a failed payment.
type AlertSender interface {
	Send(ctx context.Context, p *event.FailedPayment) error
}

// RecordStore persists a durable record of a failed payment.
type RecordStore interface {
	Create(ctx context.Context, p *event.FailedPayment) error
}

// Result reports the independent outcome of each sink.
type Result struct {
	EmailOK bool `json:"emailOk"`
	StoreOK bool `json:"storeOk"`
}

// Fanout dispatches one record to both sinks.
type Fanout struct {
	Alerts AlertSender
	Store  RecordStore
	Diag   *diaglog.Log
}

// Dispatch sends p to the alert sink and the record store concurrently. Both
// sinks are always attempted; failures are logged and reported in the Result,
// never returned as an error. Redelivery of the same event produces duplicate
// notifications: there is no dedup.
func (f *Fanout) Dispatch(ctx context.Context, p *event.FailedPayment) Result {
	var res Result
	var wg sync.WaitGroup
	wg.Add(2)

	go func() {
		defer wg.Done()
		notificationsTotal.With(prometheus.Labels{"sink": "email"}).Inc()
		if err := f.Alerts.Send(ctx, p); err != nil {
			notificationsError.With(prometheus.Labels{"sink": "email"}).Inc()
			f.Diag.Appendf("email alert failed for charge %s: %v", p.ChargeID, err)
			return
		}
		res.EmailOK = true
		f.Diag.Appendf("email alert sent for charge %s", p.ChargeID)
	}()

	go func() {
		defer wg.Done()
		notificationsTotal.With(prometheus.Labels{"sink": "store"}).Inc()
		if err := f.Store.Create(ctx, p); err != nil {
			notificationsError.With(prometheus.Labels{"sink": "store"}).Inc()
			f.Diag.Appendf("record store failed for charge %s: %v", p.ChargeID, err)
			return
		}
		res.StoreOK = true
		f.Diag.Appendf("record stored for charge %s", p.ChargeID)
	}()

	wg.Wait()
	return res
}

// FormatAmount renders a minor-unit amount as major units with the currency
// code upper-cased, e.g. 2000 "usd" -> "$20.00 USD".
func FormatAmount(minorUnits int64, currency string) string {
	return fmt.Sprintf("$%.2f %s", float64(minorUnits)/100, strings.ToUpper(currency))
}
