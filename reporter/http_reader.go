// Reader is a small client of the http reporter, used by the command
// line tool and by tests.

package reporter

import (
	"bytes"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	jsoniter "github.com/json-iterator/go"
)

var json = jsoniter.ConfigCompatibleWithStandardLibrary

type HttpReader struct {
	baseURL string
	client  *http.Client
}

func NewHttpReader(serverIP string, serverPort string) *HttpReader {
	return NewHttpReaderWithURL("http://"+serverIP+":"+serverPort, &http.Client{Timeout: DEFAULT_SEND_TIMEOUT + 10*time.Second})
}

func NewHttpReaderWithURL(baseURL string, client *http.Client) *HttpReader {
	return &HttpReader{baseURL: baseURL, client: client}
}

// errorBody is what every route answers on failure.
type errorBody struct {
	Error string `json:"error"`
}

func (hr *HttpReader) do(req *http.Request, out any) error {
	resp, err := hr.client.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return err
	}
	if resp.StatusCode != http.StatusOK {
		var e errorBody
		if json.Unmarshal(body, &e) == nil && e.Error != "" {
			return fmt.Errorf("%s %s: %d %s", req.Method, req.URL.Path, resp.StatusCode, e.Error)
		}
		return fmt.Errorf("%s %s: %d", req.Method, req.URL.Path, resp.StatusCode)
	}
	return json.Unmarshal(body, out)
}

func (hr *HttpReader) get(route string, query url.Values, out any) error {
	u := hr.baseURL + route
	if len(query) > 0 {
		u += "?" + query.Encode()
	}
	req, err := http.NewRequest(http.MethodGet, u, nil)
	if err != nil {
		return err
	}
	return hr.do(req, out)
}

func (hr *HttpReader) GetHello() (string, error) {
	var out struct {
		Message string `json:"message"`
	}
	if err := hr.get(ROUTE_HELLO, nil, &out); err != nil {
		return "", err
	}
	return out.Message, nil
}

func (hr *HttpReader) GetAddress(asset string) (*AddressResponse, error) {
	var out AddressResponse
	if err := hr.get(ROUTE_ADDRESS, url.Values{"asset": {asset}}, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (hr *HttpReader) GetBalance(asset string, confirmations int64) (*BalanceResponse, error) {
	q := url.Values{"asset": {asset}}
	if confirmations > 0 {
		q.Set("confirmations", fmt.Sprint(confirmations))
	}
	var out BalanceResponse
	if err := hr.get(ROUTE_BALANCE, q, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (hr *HttpReader) Send(r SendRequest) (*SendResponse, error) {
	body, err := json.Marshal(r)
	if err != nil {
		return nil, err
	}
	req, err := http.NewRequest(http.MethodPost, hr.baseURL+ROUTE_SEND, bytes.NewReader(body))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/json")

	var out SendResponse
	if err := hr.do(req, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (hr *HttpReader) GetTx(txID string) (*TxResponse, error) {
	var out struct {
		Data TxResponse `json:"data"`
	}
	if err := hr.get(ROUTE_TX, url.Values{"tx_id": {txID}}, &out); err != nil {
		return nil, err
	}
	return &out.Data, nil
}
