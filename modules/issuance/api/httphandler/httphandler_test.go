package httphandler

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	ethcommon "github.com/ethereum/go-ethereum/common"
	"github.com/gofiber/fiber/v2"
	"github.com/holiman/uint256"
	"github.com/openmint/issuer-node/modules/issuance/repository/memory"
	"github.com/openmint/issuer-node/modules/issuance/usecase"
	"github.com/openmint/issuer-node/pkg/errorhandler"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var (
	testCreator  = ethcommon.HexToAddress("0x1111111111111111111111111111111111111111")
	testMinter   = ethcommon.HexToAddress("0x2222222222222222222222222222222222222222")
	testReceiver = ethcommon.HexToAddress("0x3333333333333333333333333333333333333333")
	testStranger = ethcommon.HexToAddress("0x4444444444444444444444444444444444444444")
)

func setupApp(t *testing.T) (*fiber.App, *usecase.Usecase) {
	t.Helper()
	repo := memory.NewRepository()
	authority, err := usecase.Deploy(context.Background(), repo, usecase.DeployParams{
		Creator:       testCreator,
		InitialMinter: testMinter,
		BaseURIPrefix: "https://meta.example.com/tokens/",
	})
	require.NoError(t, err)

	issuanceUsecase := usecase.New(repo, authority.Address, nil)
	handler := New(issuanceUsecase, nil)

	app := fiber.New(fiber.Config{
		ErrorHandler: errorhandler.NewHTTPErrorHandler(),
	})
	require.NoError(t, handler.Mount(app))
	return app, issuanceUsecase
}

func doJSON(t *testing.T, app *fiber.App, method, target, body string) (*http.Response, []byte) {
	t.Helper()
	var reader io.Reader
	if body != "" {
		reader = strings.NewReader(body)
	}
	req := httptest.NewRequest(method, target, reader)
	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}
	resp, err := app.Test(req)
	require.NoError(t, err)
	respBody, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	return resp, respBody
}

func TestIssueSingleEndpoint(t *testing.T) {
	t.Run("mints and returns the allocated token id", func(t *testing.T) {
		app, _ := setupApp(t)
		body := fmt.Sprintf(`{"caller":"%s","receiver":"%s","quantity":"1","uri":"ipfs://QmX"}`,
			testMinter.Hex(), testReceiver.Hex())
		resp, respBody := doJSON(t, app, http.MethodPost, "/v1/issuances", body)
		assert.Equal(t, http.StatusCreated, resp.StatusCode)

		var parsed struct {
			Result struct {
				TokenID string `json:"tokenId"`
			} `json:"result"`
		}
		require.NoError(t, json.Unmarshal(respBody, &parsed))
		assert.Equal(t, "0", parsed.Result.TokenID)
	})

	t.Run("unauthorized caller gets 403", func(t *testing.T) {
		app, _ := setupApp(t)
		body := fmt.Sprintf(`{"caller":"%s","receiver":"%s","quantity":"1"}`,
			testStranger.Hex(), testReceiver.Hex())
		resp, _ := doJSON(t, app, http.MethodPost, "/v1/issuances", body)
		assert.Equal(t, http.StatusForbidden, resp.StatusCode)
	})

	t.Run("invalid receiver address gets 400", func(t *testing.T) {
		app, _ := setupApp(t)
		body := fmt.Sprintf(`{"caller":"%s","receiver":"not-an-address","quantity":"1"}`, testMinter.Hex())
		resp, _ := doJSON(t, app, http.MethodPost, "/v1/issuances", body)
		assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	})
}

func TestIssueBatchEndpoint(t *testing.T) {
	t.Run("mints consecutive ids", func(t *testing.T) {
		app, _ := setupApp(t)
		body := fmt.Sprintf(`{"caller":"%s","receiver":"%s","quantities":["1","2"],"prices":["0","19.99"],"uris":["ipfs://a","ipfs://b"]}`,
			testMinter.Hex(), testReceiver.Hex())
		resp, respBody := doJSON(t, app, http.MethodPost, "/v1/issuances/batch", body)
		assert.Equal(t, http.StatusCreated, resp.StatusCode)

		var parsed struct {
			Result struct {
				TokenIDs []string `json:"tokenIds"`
			} `json:"result"`
		}
		require.NoError(t, json.Unmarshal(respBody, &parsed))
		assert.Equal(t, []string{"0", "1"}, parsed.Result.TokenIDs)
	})

	t.Run("mismatched array lengths get 400", func(t *testing.T) {
		app, _ := setupApp(t)
		body := fmt.Sprintf(`{"caller":"%s","receiver":"%s","quantities":["1","2"],"prices":["0"],"uris":["ipfs://a","ipfs://b"]}`,
			testMinter.Hex(), testReceiver.Hex())
		resp, _ := doJSON(t, app, http.MethodPost, "/v1/issuances/batch", body)
		assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	})
}

func TestRoleEndpoints(t *testing.T) {
	t.Run("grant then check membership", func(t *testing.T) {
		app, _ := setupApp(t)
		body := fmt.Sprintf(`{"caller":"%s","principal":"%s"}`, testCreator.Hex(), testStranger.Hex())
		resp, _ := doJSON(t, app, http.MethodPost, "/v1/roles/minter/grant", body)
		assert.Equal(t, http.StatusOK, resp.StatusCode)

		resp, respBody := doJSON(t, app, http.MethodGet, "/v1/roles/minter/"+testStranger.Hex(), "")
		assert.Equal(t, http.StatusOK, resp.StatusCode)

		var parsed struct {
			Result struct {
				HasRole bool `json:"hasRole"`
			} `json:"result"`
		}
		require.NoError(t, json.Unmarshal(respBody, &parsed))
		assert.True(t, parsed.Result.HasRole)
	})

	t.Run("duplicate grant gets 400", func(t *testing.T) {
		app, _ := setupApp(t)
		body := fmt.Sprintf(`{"caller":"%s","principal":"%s"}`, testCreator.Hex(), testMinter.Hex())
		resp, _ := doJSON(t, app, http.MethodPost, "/v1/roles/minter/grant", body)
		assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	})

	t.Run("revoke by non-admin gets 403", func(t *testing.T) {
		app, _ := setupApp(t)
		body := fmt.Sprintf(`{"caller":"%s","principal":"%s"}`, testMinter.Hex(), testMinter.Hex())
		resp, _ := doJSON(t, app, http.MethodPost, "/v1/roles/minter/revoke", body)
		assert.Equal(t, http.StatusForbidden, resp.StatusCode)
	})

	t.Run("unknown role gets 400", func(t *testing.T) {
		app, _ := setupApp(t)
		resp, _ := doJSON(t, app, http.MethodGet, "/v1/roles/owner/"+testMinter.Hex(), "")
		assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	})
}

func TestGetTokenURIEndpoint(t *testing.T) {
	app, _ := setupApp(t)
	resp, respBody := doJSON(t, app, http.MethodGet, "/v1/tokens/5/uri", "")
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	var parsed struct {
		Result struct {
			URI string `json:"uri"`
		} `json:"result"`
	}
	require.NoError(t, json.Unmarshal(respBody, &parsed))
	assert.Equal(t, "https://meta.example.com/tokens/5", parsed.Result.URI)
}

func TestGetBalancesEndpoint(t *testing.T) {
	app, issuanceUsecase := setupApp(t)
	_, err := issuanceUsecase.IssueSingle(context.Background(), usecase.IssueSingleParams{
		Caller:   testMinter,
		Receiver: testReceiver,
		Quantity: uint256.NewInt(7),
	})
	require.NoError(t, err)

	resp, respBody := doJSON(t, app, http.MethodGet, "/v1/balances/"+testReceiver.Hex(), "")
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	var parsed struct {
		Result struct {
			List []struct {
				TokenID string `json:"tokenId"`
				Amount  string `json:"amount"`
			} `json:"list"`
		} `json:"result"`
	}
	require.NoError(t, json.Unmarshal(respBody, &parsed))
	require.Len(t, parsed.Result.List, 1)
	assert.Equal(t, "0", parsed.Result.List[0].TokenID)
	assert.Equal(t, "7", parsed.Result.List[0].Amount)
}

func TestGetCapabilityEndpoint(t *testing.T) {
	app, _ := setupApp(t)

	test := func(capabilityID string, expected bool) {
		t.Run(capabilityID, func(t *testing.T) {
			resp, respBody := doJSON(t, app, http.MethodGet, "/v1/capabilities/"+capabilityID, "")
			assert.Equal(t, http.StatusOK, resp.StatusCode)

			var parsed struct {
				Result struct {
					Supported bool `json:"supported"`
				} `json:"result"`
			}
			require.NoError(t, json.Unmarshal(respBody, &parsed))
			assert.Equal(t, expected, parsed.Result.Supported)
		})
	}

	test("0x01ffc9a7", true)
	test("0xd9b67a26", true)
	test("0x7965db0b", true)
	test("0xffffffff", false)

	t.Run("invalid id gets 400", func(t *testing.T) {
		resp, _ := doJSON(t, app, http.MethodGet, "/v1/capabilities/nope", "")
		assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	})
}

func TestCreateMintRequestEndpoint(t *testing.T) {
	t.Run("valid request is accepted", func(t *testing.T) {
		app, issuanceUsecase := setupApp(t)
		body := fmt.Sprintf(`{"name":"Sunrise","img":"https://img.example.com/1.png","ethAddress":"%s","description":"morning"}`,
			testReceiver.Hex())
		resp, respBody := doJSON(t, app, http.MethodPost, "/v1/mint-requests", body)
		assert.Equal(t, http.StatusAccepted, resp.StatusCode)

		var parsed struct {
			Result struct {
				Status string `json:"status"`
			} `json:"result"`
		}
		require.NoError(t, json.Unmarshal(respBody, &parsed))
		assert.Equal(t, "accepted", parsed.Result.Status)

		// intake acknowledges without issuing anything
		authority, err := issuanceUsecase.GetAuthority(context.Background())
		require.NoError(t, err)
		assert.True(t, authority.NextTokenID.IsZero())
	})

	t.Run("missing name gets 400", func(t *testing.T) {
		app, _ := setupApp(t)
		body := fmt.Sprintf(`{"img":"https://img.example.com/1.png","ethAddress":"%s"}`, testReceiver.Hex())
		resp, _ := doJSON(t, app, http.MethodPost, "/v1/mint-requests", body)
		assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	})

	t.Run("invalid eth address gets 400", func(t *testing.T) {
		app, _ := setupApp(t)
		body := `{"name":"Sunrise","img":"https://img.example.com/1.png","ethAddress":"0x123"}`
		resp, _ := doJSON(t, app, http.MethodPost, "/v1/mint-requests", body)
		assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	})
}

func TestGetAuthorityEndpoint(t *testing.T) {
	app, issuanceUsecase := setupApp(t)
	resp, respBody := doJSON(t, app, http.MethodGet, "/v1/authority", "")
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	var parsed struct {
		Result struct {
			Address     string `json:"address"`
			NextTokenID string `json:"nextTokenId"`
		} `json:"result"`
	}
	require.NoError(t, json.Unmarshal(respBody, &parsed))
	assert.Equal(t, issuanceUsecase.Authority().Hex(), parsed.Result.Address)
	assert.Equal(t, "0", parsed.Result.NextTokenID)
}
