package ipc

import (
	"fmt"

	"google.golang.org/protobuf/encoding/protowire"
)

// Field numbers for ConnectionRequest and its nested messages. Stable once
// assigned; never renumber a field already shipped on the wire.
const (
	fieldConnAddresses              = 1
	fieldConnUseTLS                 = 2
	fieldConnCredentials            = 3
	fieldConnDatabaseID             = 4
	fieldConnClusterModeEnabled     = 5
	fieldConnReadFrom               = 6
	fieldConnPeriodicChecksEnabled  = 7
	fieldConnPeriodicChecksInterval = 8
	fieldConnReconnectStrategy      = 9
	fieldConnSubscriptions          = 10
	fieldConnRequestTimeoutMs       = 11
	fieldConnClientName             = 12
	fieldConnProtocolVersion        = 13
	fieldConnIam                    = 14

	fieldNodeHost = 1
	fieldNodePort = 2

	fieldCredUsername = 1
	fieldCredPassword = 2

	fieldIamEnabled = 1

	fieldReconnectRetries      = 1
	fieldReconnectFactor       = 2
	fieldReconnectExponentBase = 3
	fieldReconnectJitter       = 4

	fieldSubsExact    = 1
	fieldSubsPattern  = 2
	fieldSubsSharded  = 3
)

// NodeAddress is one member of the Connection Request's address list.
type NodeAddress struct {
	Host string
	Port uint32
}

// Credentials carries a username/password pair for standard authentication.
type Credentials struct {
	Username string
	Password string
}

// IamAuth selects IAM token authentication in place of Credentials.
type IamAuth struct {
	Enabled bool
}

// ReconnectStrategy is the exponential backoff policy for reconnection.
type ReconnectStrategy struct {
	NumOfRetries   uint32
	Factor         uint32
	ExponentBase   uint32
	JitterFraction uint32
}

// Subscriptions is the per-mode channel/pattern set requested at handshake.
type Subscriptions struct {
	Exact   []string
	Pattern []string
	Sharded []string
}

// ConnectionRequest is sent as the payload of callback slot 0 during the C3
// handshake. Its fields mirror the environment/config surface: address
// list, TLS bit, credentials (username/password or IAM), database index,
// cluster mode bit, read-from strategy, periodic-checks policy, reconnect
// backoff, pub/sub subscriptions, request timeout, client name, protocol
// version.
type ConnectionRequest struct {
	Addresses              []NodeAddress
	UseTLS                 bool
	Credentials            *Credentials
	Iam                    *IamAuth
	DatabaseID             int32
	ClusterModeEnabled     bool
	ReadFrom               string
	PeriodicChecksEnabled  bool
	PeriodicChecksInterval uint64
	ReconnectStrategy      ReconnectStrategy
	Subscriptions          Subscriptions
	RequestTimeoutMs       uint64
	ClientName             string
	ProtocolVersion        string
}

func (m *ConnectionRequest) Marshal() ([]byte, error) {
	var b []byte
	for _, addr := range m.Addresses {
		b = protowire.AppendTag(b, fieldConnAddresses, protowire.BytesType)
		b = protowire.AppendBytes(b, marshalNodeAddress(addr))
	}
	if m.UseTLS {
		b = protowire.AppendTag(b, fieldConnUseTLS, protowire.VarintType)
		b = protowire.AppendVarint(b, 1)
	}
	if m.Credentials != nil {
		b = protowire.AppendTag(b, fieldConnCredentials, protowire.BytesType)
		b = protowire.AppendBytes(b, marshalCredentials(*m.Credentials))
	}
	if m.Iam != nil {
		b = protowire.AppendTag(b, fieldConnIam, protowire.BytesType)
		b = protowire.AppendBytes(b, marshalIamAuth(*m.Iam))
	}
	if m.DatabaseID != 0 {
		b = protowire.AppendTag(b, fieldConnDatabaseID, protowire.VarintType)
		b = protowire.AppendVarint(b, uint64(int64(m.DatabaseID)))
	}
	if m.ClusterModeEnabled {
		b = protowire.AppendTag(b, fieldConnClusterModeEnabled, protowire.VarintType)
		b = protowire.AppendVarint(b, 1)
	}
	if m.ReadFrom != "" {
		b = protowire.AppendTag(b, fieldConnReadFrom, protowire.BytesType)
		b = protowire.AppendString(b, m.ReadFrom)
	}
	if m.PeriodicChecksEnabled {
		b = protowire.AppendTag(b, fieldConnPeriodicChecksEnabled, protowire.VarintType)
		b = protowire.AppendVarint(b, 1)
	}
	if m.PeriodicChecksInterval != 0 {
		b = protowire.AppendTag(b, fieldConnPeriodicChecksInterval, protowire.VarintType)
		b = protowire.AppendVarint(b, m.PeriodicChecksInterval)
	}
	b = protowire.AppendTag(b, fieldConnReconnectStrategy, protowire.BytesType)
	b = protowire.AppendBytes(b, marshalReconnectStrategy(m.ReconnectStrategy))
	b = protowire.AppendTag(b, fieldConnSubscriptions, protowire.BytesType)
	b = protowire.AppendBytes(b, marshalSubscriptions(m.Subscriptions))
	if m.RequestTimeoutMs != 0 {
		b = protowire.AppendTag(b, fieldConnRequestTimeoutMs, protowire.VarintType)
		b = protowire.AppendVarint(b, m.RequestTimeoutMs)
	}
	if m.ClientName != "" {
		b = protowire.AppendTag(b, fieldConnClientName, protowire.BytesType)
		b = protowire.AppendString(b, m.ClientName)
	}
	if m.ProtocolVersion != "" {
		b = protowire.AppendTag(b, fieldConnProtocolVersion, protowire.BytesType)
		b = protowire.AppendString(b, m.ProtocolVersion)
	}
	return b, nil
}

func (m *ConnectionRequest) Unmarshal(data []byte) error {
	*m = ConnectionRequest{}
	for len(data) > 0 {
		num, typ, n := protowire.ConsumeTag(data)
		if n < 0 {
			return fmt.Errorf("ipc: connection request: bad tag: %w", protowire.ParseError(n))
		}
		data = data[n:]

		switch num {
		case fieldConnAddresses:
			raw, nn := consumeBytesField(data, typ)
			if nn < 0 {
				return errBadField("connection request", "addresses")
			}
			addr, err := unmarshalNodeAddress(raw)
			if err != nil {
				return err
			}
			m.Addresses = append(m.Addresses, addr)
			data = data[nn:]
		case fieldConnUseTLS:
			v, nn := protowire.ConsumeVarint(data)
			if nn < 0 {
				return errBadField("connection request", "use_tls")
			}
			m.UseTLS = v != 0
			data = data[nn:]
		case fieldConnCredentials:
			raw, nn := consumeBytesField(data, typ)
			if nn < 0 {
				return errBadField("connection request", "credentials")
			}
			creds, err := unmarshalCredentials(raw)
			if err != nil {
				return err
			}
			m.Credentials = &creds
			data = data[nn:]
		case fieldConnIam:
			raw, nn := consumeBytesField(data, typ)
			if nn < 0 {
				return errBadField("connection request", "iam")
			}
			iam, err := unmarshalIamAuth(raw)
			if err != nil {
				return err
			}
			m.Iam = &iam
			data = data[nn:]
		case fieldConnDatabaseID:
			v, nn := protowire.ConsumeVarint(data)
			if nn < 0 {
				return errBadField("connection request", "database_id")
			}
			m.DatabaseID = int32(int64(v))
			data = data[nn:]
		case fieldConnClusterModeEnabled:
			v, nn := protowire.ConsumeVarint(data)
			if nn < 0 {
				return errBadField("connection request", "cluster_mode_enabled")
			}
			m.ClusterModeEnabled = v != 0
			data = data[nn:]
		case fieldConnReadFrom:
			v, nn := protowire.ConsumeString(data)
			if nn < 0 {
				return errBadField("connection request", "read_from")
			}
			m.ReadFrom = v
			data = data[nn:]
		case fieldConnPeriodicChecksEnabled:
			v, nn := protowire.ConsumeVarint(data)
			if nn < 0 {
				return errBadField("connection request", "periodic_checks_enabled")
			}
			m.PeriodicChecksEnabled = v != 0
			data = data[nn:]
		case fieldConnPeriodicChecksInterval:
			v, nn := protowire.ConsumeVarint(data)
			if nn < 0 {
				return errBadField("connection request", "periodic_checks_interval")
			}
			m.PeriodicChecksInterval = v
			data = data[nn:]
		case fieldConnReconnectStrategy:
			raw, nn := consumeBytesField(data, typ)
			if nn < 0 {
				return errBadField("connection request", "reconnect_strategy")
			}
			rs, err := unmarshalReconnectStrategy(raw)
			if err != nil {
				return err
			}
			m.ReconnectStrategy = rs
			data = data[nn:]
		case fieldConnSubscriptions:
			raw, nn := consumeBytesField(data, typ)
			if nn < 0 {
				return errBadField("connection request", "subscriptions")
			}
			subs, err := unmarshalSubscriptions(raw)
			if err != nil {
				return err
			}
			m.Subscriptions = subs
			data = data[nn:]
		case fieldConnRequestTimeoutMs:
			v, nn := protowire.ConsumeVarint(data)
			if nn < 0 {
				return errBadField("connection request", "request_timeout_ms")
			}
			m.RequestTimeoutMs = v
			data = data[nn:]
		case fieldConnClientName:
			v, nn := protowire.ConsumeString(data)
			if nn < 0 {
				return errBadField("connection request", "client_name")
			}
			m.ClientName = v
			data = data[nn:]
		case fieldConnProtocolVersion:
			v, nn := protowire.ConsumeString(data)
			if nn < 0 {
				return errBadField("connection request", "protocol_version")
			}
			m.ProtocolVersion = v
			data = data[nn:]
		default:
			nn := protowire.ConsumeFieldValue(num, typ, data)
			if nn < 0 {
				return errBadField("connection request", "unknown")
			}
			data = data[nn:]
		}
	}
	return nil
}

func marshalNodeAddress(a NodeAddress) []byte {
	var b []byte
	if a.Host != "" {
		b = protowire.AppendTag(b, fieldNodeHost, protowire.BytesType)
		b = protowire.AppendString(b, a.Host)
	}
	if a.Port != 0 {
		b = protowire.AppendTag(b, fieldNodePort, protowire.VarintType)
		b = protowire.AppendVarint(b, uint64(a.Port))
	}
	return b
}

func unmarshalNodeAddress(data []byte) (NodeAddress, error) {
	var a NodeAddress
	for len(data) > 0 {
		num, typ, n := protowire.ConsumeTag(data)
		if n < 0 {
			return a, errBadField("node address", "tag")
		}
		data = data[n:]
		switch num {
		case fieldNodeHost:
			v, nn := protowire.ConsumeString(data)
			if nn < 0 {
				return a, errBadField("node address", "host")
			}
			a.Host = v
			data = data[nn:]
		case fieldNodePort:
			v, nn := protowire.ConsumeVarint(data)
			if nn < 0 {
				return a, errBadField("node address", "port")
			}
			a.Port = uint32(v)
			data = data[nn:]
		default:
			nn := protowire.ConsumeFieldValue(num, typ, data)
			if nn < 0 {
				return a, errBadField("node address", "unknown")
			}
			data = data[nn:]
		}
	}
	return a, nil
}

func marshalCredentials(c Credentials) []byte {
	var b []byte
	b = protowire.AppendTag(b, fieldCredUsername, protowire.BytesType)
	b = protowire.AppendString(b, c.Username)
	b = protowire.AppendTag(b, fieldCredPassword, protowire.BytesType)
	b = protowire.AppendString(b, c.Password)
	return b
}

func unmarshalCredentials(data []byte) (Credentials, error) {
	var c Credentials
	for len(data) > 0 {
		num, typ, n := protowire.ConsumeTag(data)
		if n < 0 {
			return c, errBadField("credentials", "tag")
		}
		data = data[n:]
		switch num {
		case fieldCredUsername:
			v, nn := protowire.ConsumeString(data)
			if nn < 0 {
				return c, errBadField("credentials", "username")
			}
			c.Username = v
			data = data[nn:]
		case fieldCredPassword:
			v, nn := protowire.ConsumeString(data)
			if nn < 0 {
				return c, errBadField("credentials", "password")
			}
			c.Password = v
			data = data[nn:]
		default:
			nn := protowire.ConsumeFieldValue(num, typ, data)
			if nn < 0 {
				return c, errBadField("credentials", "unknown")
			}
			data = data[nn:]
		}
	}
	return c, nil
}

func marshalIamAuth(a IamAuth) []byte {
	var b []byte
	if a.Enabled {
		b = protowire.AppendTag(b, fieldIamEnabled, protowire.VarintType)
		b = protowire.AppendVarint(b, 1)
	}
	return b
}

func unmarshalIamAuth(data []byte) (IamAuth, error) {
	var a IamAuth
	for len(data) > 0 {
		num, typ, n := protowire.ConsumeTag(data)
		if n < 0 {
			return a, errBadField("iam auth", "tag")
		}
		data = data[n:]
		switch num {
		case fieldIamEnabled:
			v, nn := protowire.ConsumeVarint(data)
			if nn < 0 {
				return a, errBadField("iam auth", "enabled")
			}
			a.Enabled = v != 0
			data = data[nn:]
		default:
			nn := protowire.ConsumeFieldValue(num, typ, data)
			if nn < 0 {
				return a, errBadField("iam auth", "unknown")
			}
			data = data[nn:]
		}
	}
	return a, nil
}

func marshalReconnectStrategy(r ReconnectStrategy) []byte {
	var b []byte
	b = protowire.AppendTag(b, fieldReconnectRetries, protowire.VarintType)
	b = protowire.AppendVarint(b, uint64(r.NumOfRetries))
	b = protowire.AppendTag(b, fieldReconnectFactor, protowire.VarintType)
	b = protowire.AppendVarint(b, uint64(r.Factor))
	b = protowire.AppendTag(b, fieldReconnectExponentBase, protowire.VarintType)
	b = protowire.AppendVarint(b, uint64(r.ExponentBase))
	if r.JitterFraction != 0 {
		b = protowire.AppendTag(b, fieldReconnectJitter, protowire.VarintType)
		b = protowire.AppendVarint(b, uint64(r.JitterFraction))
	}
	return b
}

func unmarshalReconnectStrategy(data []byte) (ReconnectStrategy, error) {
	var r ReconnectStrategy
	for len(data) > 0 {
		num, typ, n := protowire.ConsumeTag(data)
		if n < 0 {
			return r, errBadField("reconnect strategy", "tag")
		}
		data = data[n:]
		switch num {
		case fieldReconnectRetries:
			v, nn := protowire.ConsumeVarint(data)
			if nn < 0 {
				return r, errBadField("reconnect strategy", "retries")
			}
			r.NumOfRetries = uint32(v)
			data = data[nn:]
		case fieldReconnectFactor:
			v, nn := protowire.ConsumeVarint(data)
			if nn < 0 {
				return r, errBadField("reconnect strategy", "factor")
			}
			r.Factor = uint32(v)
			data = data[nn:]
		case fieldReconnectExponentBase:
			v, nn := protowire.ConsumeVarint(data)
			if nn < 0 {
				return r, errBadField("reconnect strategy", "exponent_base")
			}
			r.ExponentBase = uint32(v)
			data = data[nn:]
		case fieldReconnectJitter:
			v, nn := protowire.ConsumeVarint(data)
			if nn < 0 {
				return r, errBadField("reconnect strategy", "jitter")
			}
			r.JitterFraction = uint32(v)
			data = data[nn:]
		default:
			nn := protowire.ConsumeFieldValue(num, typ, data)
			if nn < 0 {
				return r, errBadField("reconnect strategy", "unknown")
			}
			data = data[nn:]
		}
	}
	return r, nil
}

func marshalSubscriptions(s Subscriptions) []byte {
	var b []byte
	for _, ch := range s.Exact {
		b = protowire.AppendTag(b, fieldSubsExact, protowire.BytesType)
		b = protowire.AppendString(b, ch)
	}
	for _, ch := range s.Pattern {
		b = protowire.AppendTag(b, fieldSubsPattern, protowire.BytesType)
		b = protowire.AppendString(b, ch)
	}
	for _, ch := range s.Sharded {
		b = protowire.AppendTag(b, fieldSubsSharded, protowire.BytesType)
		b = protowire.AppendString(b, ch)
	}
	return b
}

func unmarshalSubscriptions(data []byte) (Subscriptions, error) {
	var s Subscriptions
	for len(data) > 0 {
		num, typ, n := protowire.ConsumeTag(data)
		if n < 0 {
			return s, errBadField("subscriptions", "tag")
		}
		data = data[n:]
		switch num {
		case fieldSubsExact:
			v, nn := protowire.ConsumeString(data)
			if nn < 0 {
				return s, errBadField("subscriptions", "exact")
			}
			s.Exact = append(s.Exact, v)
			data = data[nn:]
		case fieldSubsPattern:
			v, nn := protowire.ConsumeString(data)
			if nn < 0 {
				return s, errBadField("subscriptions", "pattern")
			}
			s.Pattern = append(s.Pattern, v)
			data = data[nn:]
		case fieldSubsSharded:
			v, nn := protowire.ConsumeString(data)
			if nn < 0 {
				return s, errBadField("subscriptions", "sharded")
			}
			s.Sharded = append(s.Sharded, v)
			data = data[nn:]
		default:
			nn := protowire.ConsumeFieldValue(num, typ, data)
			if nn < 0 {
				return s, errBadField("subscriptions", "unknown")
			}
			data = data[nn:]
		}
	}
	return s, nil
}

// IsEmpty reports whether no subscriptions were requested at handshake. C5
// treats this as a configuration error for pull/callback mode access.
func (s Subscriptions) IsEmpty() bool {
	return len(s.Exact) == 0 && len(s.Pattern) == 0 && len(s.Sharded) == 0
}
