package config

// LinkConfig describes one modem link endpoint.
// Example YAML:
//
//	links:
//	  - kind: udp
//	    listen: ":7450"
//	    local_address: 1
//	    peers:
//	      - address: 5
//	        endpoint: "10.0.0.2:7450"
//	  - kind: tcp
//	    endpoint: "192.168.0.147:9200"   # modem serial server
//	  - kind: mem
//	    listen: "inproc://test"
type LinkConfig struct {
	Kind string `mapstructure:"kind"`
	// Listen is the local bind endpoint (udp/mem kinds).
	Listen string `mapstructure:"listen"`
	// Endpoint is the remote endpoint to dial (tcp kind).
	Endpoint string `mapstructure:"endpoint"`
	// LocalAddress is this node's modem address on the link.
	LocalAddress uint8 `mapstructure:"local_address"`
	// Peers maps modem addresses to network endpoints (udp kind).
	Peers []PeerAddr `mapstructure:"peers"`
}

// PeerAddr binds one modem address to a network endpoint.
type PeerAddr struct {
	Address  uint8  `mapstructure:"address"`
	Endpoint string `mapstructure:"endpoint"`
}
