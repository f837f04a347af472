package cmd

import (
	"os"

	"github.com/btcsuite/btcd/chaincfg"

	btcrpc "github.com/TEENet-io/multiwallet/btcman/rpc"
)

// FileExists checks if a file exists and is readable
func FileExists(filePath string) bool {
	file, err := os.Open(filePath)
	if err != nil {
		return false
	}
	defer file.Close()
	return true
}

// Shared Helper function. Create a btc rpc client.
func SetupBtcRpc(server string, port string, username string, password string, params *chaincfg.Params) (*btcrpc.RpcClient, error) {
	_config := btcrpc.RpcClientConfig{
		ServerAddr:  server,
		Port:        port,
		Username:    username,
		Pwd:         password,
		ChainConfig: params,
	}
	return btcrpc.NewRpcClient(&_config)
}
