package model

// ChainConfig describes one watched EVM network.
//
// The set of chains is fixed at load time; a subscriber may substitute
// RPCURL with a personal endpoint, which is applied by building a copy
// with WithEndpoint rather than mutating the shared config.
type ChainConfig struct {
	Key    string `json:"key"`
	Name   string `json:"name"`
	RPCURL string `json:"rpc_url"`
}

// WithEndpoint returns a copy of the config pointing at a different RPC URL.
func (c ChainConfig) WithEndpoint(url string) ChainConfig {
	c.RPCURL = url
	return c
}
