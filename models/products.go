package models

// Well-known product names served by the control plane.
const (
	ProductASMFeatures = "ASM_FEATURES"
	ProductASMData     = "ASM_DATA"
	ProductASMDD       = "ASM_DD"
	ProductASM         = "ASM"
	ProductAPMTracing  = "APM_TRACING"
	ProductLiveDebug   = "LIVE_DEBUGGING"
)
