package nodeconf

import "sort"

// Recognized daemon option keys.
const (
	KeyTestnet              = "testnet"
	KeyRegtest              = "regtest"
	KeyProxy                = "proxy"
	KeyBind                 = "bind"
	KeyWhiteBind            = "whitebind"
	KeyAddNode              = "addnode"
	KeyConnect              = "connect"
	KeyListen               = "listen"
	KeyMaxConnections       = "maxconnections"
	KeyServer               = "server"
	KeyRPCBind              = "rpcbind"
	KeyRPCUser              = "rpcuser"
	KeyRPCPassword          = "rpcpassword"
	KeyRPCClientTimeout     = "rpcclienttimeout"
	KeyRPCAllowIP           = "rpcallowip"
	KeyRPCPort              = "rpcport"
	KeyRPCConnect           = "rpcconnect"
	KeySendFreeTransactions = "sendfreetransactions"
	KeyTxConfirmTarget      = "txconfirmtarget"
	KeyGen                  = "gen"
	KeyGenProcLimit         = "genproclimit"
	KeyKeyPool              = "keypool"
	KeyPayTxFee             = "paytxfee"
	KeyDataDir              = "datadir"
	KeyConf                 = "conf"
)

// KnownKeys lists every recognized option in declaration order.
var KnownKeys = []string{
	KeyTestnet, KeyRegtest, KeyProxy, KeyBind, KeyWhiteBind, KeyAddNode,
	KeyConnect, KeyListen, KeyMaxConnections, KeyServer, KeyRPCBind,
	KeyRPCUser, KeyRPCPassword, KeyRPCClientTimeout, KeyRPCAllowIP,
	KeyRPCPort, KeyRPCConnect, KeySendFreeTransactions, KeyTxConfirmTarget,
	KeyGen, KeyGenProcLimit, KeyKeyPool, KeyPayTxFee, KeyDataDir, KeyConf,
}

// Record is a parsed daemon configuration.
//
// Each recognized option has its own field; nil means the option is not set.
// Options the parser does not recognize land in Extra. Keys reports the
// defined options in the order they first appeared in the source.
type Record struct {
	Testnet              *string
	Regtest              *string
	Proxy                *string
	Bind                 *string
	WhiteBind            *string
	AddNode              *string
	Connect              *string
	Listen               *string
	MaxConnections       *string
	Server               *string
	RPCBind              *string
	RPCUser              *string
	RPCPassword          *string
	RPCClientTimeout     *string
	RPCAllowIP           *string
	RPCPort              *string
	RPCConnect           *string
	SendFreeTransactions *string
	TxConfirmTarget      *string
	Gen                  *string
	GenProcLimit         *string
	KeyPool              *string
	PayTxFee             *string

	// Runtime-only options, normally passed on the command line.
	DataDir *string
	Conf    *string

	Extra map[string]string

	order   []string
	tracked map[string]struct{}
}

// NewRecord returns an empty record.
func NewRecord() *Record {
	return &Record{}
}

// IsKnownKey reports whether key is one of the recognized daemon options.
func IsKnownKey(key string) bool {
	return (&Record{}).slot(key) != nil
}

func (r *Record) slot(key string) **string {
	switch key {
	case KeyTestnet:
		return &r.Testnet
	case KeyRegtest:
		return &r.Regtest
	case KeyProxy:
		return &r.Proxy
	case KeyBind:
		return &r.Bind
	case KeyWhiteBind:
		return &r.WhiteBind
	case KeyAddNode:
		return &r.AddNode
	case KeyConnect:
		return &r.Connect
	case KeyListen:
		return &r.Listen
	case KeyMaxConnections:
		return &r.MaxConnections
	case KeyServer:
		return &r.Server
	case KeyRPCBind:
		return &r.RPCBind
	case KeyRPCUser:
		return &r.RPCUser
	case KeyRPCPassword:
		return &r.RPCPassword
	case KeyRPCClientTimeout:
		return &r.RPCClientTimeout
	case KeyRPCAllowIP:
		return &r.RPCAllowIP
	case KeyRPCPort:
		return &r.RPCPort
	case KeyRPCConnect:
		return &r.RPCConnect
	case KeySendFreeTransactions:
		return &r.SendFreeTransactions
	case KeyTxConfirmTarget:
		return &r.TxConfirmTarget
	case KeyGen:
		return &r.Gen
	case KeyGenProcLimit:
		return &r.GenProcLimit
	case KeyKeyPool:
		return &r.KeyPool
	case KeyPayTxFee:
		return &r.PayTxFee
	case KeyDataDir:
		return &r.DataDir
	case KeyConf:
		return &r.Conf
	}
	return nil
}

// Get returns the value for key and whether it is defined.
func (r *Record) Get(key string) (string, bool) {
	if r == nil {
		return "", false
	}
	if p := r.slot(key); p != nil {
		if *p == nil {
			return "", false
		}
		return **p, true
	}
	v, ok := r.Extra[key]
	return v, ok
}

// Set defines key. A key keeps the position of its first appearance.
// r must be non-nil.
func (r *Record) Set(key, value string) {
	r.track(key)
	if p := r.slot(key); p != nil {
		v := value
		*p = &v
		return
	}
	if r.Extra == nil {
		r.Extra = make(map[string]string)
	}
	r.Extra[key] = value
}

// unset records key as present but without a value. Such keys are invisible
// to callers and are dropped by compact unless a later Set defines them.
func (r *Record) unset(key string) {
	r.track(key)
	if p := r.slot(key); p != nil {
		*p = nil
		return
	}
	delete(r.Extra, key)
}

// Delete removes key from the record. Deleting from a nil record is a no-op.
func (r *Record) Delete(key string) {
	if r == nil {
		return
	}
	if p := r.slot(key); p != nil {
		*p = nil
	} else {
		delete(r.Extra, key)
	}
	if _, ok := r.tracked[key]; !ok {
		return
	}
	delete(r.tracked, key)
	for i, k := range r.order {
		if k == key {
			r.order = append(r.order[:i], r.order[i+1:]...)
			break
		}
	}
}

func (r *Record) track(key string) {
	if _, ok := r.tracked[key]; ok {
		return
	}
	if r.tracked == nil {
		r.tracked = make(map[string]struct{})
	}
	r.tracked[key] = struct{}{}
	r.order = append(r.order, key)
}

// compact drops every tracked key that has no value.
func (r *Record) compact() {
	kept := r.order[:0]
	for _, k := range r.order {
		if _, ok := r.Get(k); ok {
			kept = append(kept, k)
		} else {
			delete(r.tracked, k)
		}
	}
	r.order = kept
}

// Keys returns the defined keys in insertion order.
//
// Fields assigned directly rather than through Set are appended after the
// tracked keys: known options in declaration order, then extras sorted.
func (r *Record) Keys() []string {
	if r == nil {
		return nil
	}
	keys := make([]string, 0, len(r.order))
	seen := make(map[string]struct{}, len(r.order))
	for _, k := range r.order {
		if _, ok := r.Get(k); ok {
			keys = append(keys, k)
			seen[k] = struct{}{}
		}
	}
	for _, k := range KnownKeys {
		if _, dup := seen[k]; dup {
			continue
		}
		if _, ok := r.Get(k); ok {
			keys = append(keys, k)
		}
	}
	var extras []string
	for k := range r.Extra {
		if _, dup := seen[k]; !dup {
			extras = append(extras, k)
		}
	}
	sort.Strings(extras)
	return append(keys, extras...)
}

// Len returns the number of defined keys.
func (r *Record) Len() int {
	return len(r.Keys())
}

// Map returns a copy of the defined keys and values.
func (r *Record) Map() map[string]string {
	out := make(map[string]string)
	for _, k := range r.Keys() {
		v, _ := r.Get(k)
		out[k] = v
	}
	return out
}

// IsTestnet reports whether the record selects the test network.
func (r *Record) IsTestnet() bool {
	v, ok := r.Get(KeyTestnet)
	return ok && v != "0"
}

// Clone returns a deep copy of r.
func (r *Record) Clone() *Record {
	out := NewRecord()
	if r == nil {
		return out
	}
	for _, k := range r.Keys() {
		v, _ := r.Get(k)
		out.Set(k, v)
	}
	return out
}
