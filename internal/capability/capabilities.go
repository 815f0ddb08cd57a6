package capability

// Known capability bits advertised to the control plane.
const (
	ASMActivation             uint = 1
	ASMIPBlocking             uint = 2
	ASMDDRules                uint = 3
	ASMExclusions             uint = 4
	ASMRequestBlocking        uint = 5
	ASMResponseBlocking       uint = 6
	ASMUserBlocking           uint = 7
	ASMCustomRules            uint = 8
	ASMCustomBlockingResponse uint = 9
	ASMTrustedIPs             uint = 10
	ASMAPISecuritySampleRate  uint = 11
	APMTracingSampleRate      uint = 12
	APMTracingLogsInjection   uint = 13
	APMTracingHTTPHeaderTags  uint = 14
	APMTracingCustomTags      uint = 15
	APMTracingEnabled         uint = 19
	ASMRASPSQLI               uint = 21
	ASMRASPSSRF               uint = 23
	APMTracingSampleRules     uint = 29
)
