package api

import "time"

// ContainerInfo describes the opened log file.
type ContainerInfo struct {
	Name        string `json:"name"`
	Zipped      bool   `json:"zipped"`
	Version     uint8  `json:"version"`
	RecordCount uint32 `json:"record_count"`
	StatusCount uint32 `json:"status_count"`
	DatSize     uint64 `json:"dat_size"`
}

// RecordSummary is the list view of one image record.
type RecordSummary struct {
	Index    int       `json:"index"`
	Time     time.Time `json:"time"`
	DeviceID uint16    `json:"device_id"`
	Width    uint32    `json:"width"`
	Height   uint32    `json:"height"`
}

// RecordDetail is the full metadata view of one image record.
type RecordDetail struct {
	RecordSummary

	NodeID              uint16  `json:"node_id"`
	ImageVersion        uint16  `json:"image_version"`
	Compression         string  `json:"compression"`
	RangeStart          uint32  `json:"range_start"`
	RangeEnd            uint32  `json:"range_end"`
	BearingStart        uint32  `json:"bearing_start"`
	BearingEnd          uint32  `json:"bearing_end"`
	StateFlags          uint32  `json:"state_flags"`
	ModulationFrequency uint32  `json:"modulation_frequency"`
	PingFlags           uint16  `json:"ping_flags"`
	SoundSpeed          float32 `json:"sound_speed"`
	PercentGain         uint16  `json:"percent_gain"`
	Chirp               uint8   `json:"chirp"`
	SonarType           uint8   `json:"sonar_type"`
	Platform            uint8   `json:"platform"`
	DataSize            uint32  `json:"data_size"`
	RecordSize          uint32  `json:"record_size"`

	TxTime time.Time `json:"tx_time"`
}

// StatusSummary is the presentation view of one status record.
type StatusSummary struct {
	Index           int       `json:"index"`
	Time            time.Time `json:"time"`
	DeviceID        uint16    `json:"device_id"`
	PSUTemp         float64   `json:"psu_temp"`
	DieTemp         float64   `json:"die_temp"`
	TransducerTemp  float64   `json:"transducer_temp"`
	LinkQuality     uint16    `json:"link_quality"`
	PacketCount     uint32    `json:"packet_count"`
	RecvErrorCount  uint32    `json:"recv_error_count"`
	ShutdownStatus  uint16    `json:"shutdown_status"`
	NetAdapterFound bool      `json:"net_adapter_found"`
}

// apiError is the error envelope on every non-2xx response.
type apiError struct {
	Message string `json:"message"`
	Type    string `json:"type"`
}
