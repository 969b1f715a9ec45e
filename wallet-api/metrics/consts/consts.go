package consts

const (
	SmartWalletPromNamespace = "smartwallet"
	// TxSubsystem groups the metrics of the signed transaction pipeline.
	TxSubsystem = "tx"
)
