package common

const (
	// PrometheusNamespace for all metrics in the payment notifier.
	PrometheusNamespace = "payment_notifier"
)
