package valueobjects

type Security string

const (
	SecurityNone    Security = "none"
	SecurityTLS     Security = "tls"
	SecurityReality Security = "reality"
)

func (s Security) String() string {
	return string(s)
}

func (s Security) IsReality() bool {
	return s == SecurityReality
}

func (s Security) IsTLS() bool {
	return s == SecurityTLS
}
