package exchange

import "fmt"

// RequestType is the closed set of operations a client can request.
type RequestType int

// Set of operations supported by the ledger service.
const (
	GetBasicView RequestType = iota + 1
	AddBlock
	VerifyChain
	GetFullView
	CorruptChain
	RepairChain
	ClientExit
)

// TypeError is the response type used for every failed exchange.
const TypeError = "Error"

var typeNames = map[RequestType]string{
	GetBasicView: "getBasicView",
	AddBlock:     "addBlock",
	VerifyChain:  "verifyChain",
	GetFullView:  "getFullView",
	CorruptChain: "corruptChain",
	RepairChain:  "repairChain",
	ClientExit:   "clientExit",
}

// RequestTypes returns every request type in wire order.
func RequestTypes() []RequestType {
	return []RequestType{GetBasicView, AddBlock, VerifyChain, GetFullView, CorruptChain, RepairChain, ClientExit}
}

// ParseRequestType converts the wire name into a RequestType.
func ParseRequestType(name string) (RequestType, error) {
	for rt, n := range typeNames {
		if n == name {
			return rt, nil
		}
	}
	return 0, fmt.Errorf("unknown request type %q", name)
}

// String returns the wire name of the request type.
func (rt RequestType) String() string {
	if n, exists := typeNames[rt]; exists {
		return n
	}
	return fmt.Sprintf("RequestType(%d)", int(rt))
}

// MarshalText implements the encoding.TextMarshaler interface.
func (rt RequestType) MarshalText() ([]byte, error) {
	if _, exists := typeNames[rt]; !exists {
		return nil, fmt.Errorf("unknown request type %d", int(rt))
	}
	return []byte(rt.String()), nil
}

// UnmarshalText implements the encoding.TextUnmarshaler interface.
func (rt *RequestType) UnmarshalText(data []byte) error {
	v, err := ParseRequestType(string(data))
	if err != nil {
		return err
	}
	*rt = v
	return nil
}
