package common

const (
	KEY_BATCH_REPORT = "batch_report:%s"
)

const (
	KEY_LOG_HOOK_SEND_ALERT = "send_alert"
)

const (
	DEFAULT_BENCHMARK_SYMBOL = "^GSPC"
)
