package api

import (
	"context"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/pkg/errors"
	"github.com/purelabio/ethgate/eth"
	"github.com/purelabio/ethgate/gateway"
)

type handlers struct {
	service *gateway.Service
}

type tokenReq struct {
	Token   eth.Address `json:"token"`
	Owner   eth.Address `json:"owner"`
	Spender eth.Address `json:"spender"`
}

type signReq struct {
	Tx         eth.TxMsg `json:"tx"`
	PrivateKey string    `json:"private_key"`
}

type sendReq struct {
	SignedTx string `json:"signed_tx"`
}

type balanceRes struct {
	Balance string `json:"balance"`
}

type allowanceRes struct {
	Allowance string `json:"allowance"`
}

type totalSupplyRes struct {
	TotalSupply string `json:"total_supply"`
}

type decimalsRes struct {
	Decimals uint8 `json:"decimals"`
}

type signedRes struct {
	SignedTx string   `json:"signed_tx"`
	TxHash   eth.Hash `json:"tx_hash"`
}

type sentRes struct {
	TxHash eth.Hash `json:"tx_hash"`
}

// The receipt is null until the transaction is mined.
type receiptRes struct {
	Receipt *eth.TxReceipt `json:"receipt"`
}

type healthRes struct {
	ChainID uint64 `json:"chain_id"`
}

/*
Handler for an operation that turns the decoded body into a prepared
transaction. All "/token" and "/wallet" mutations share this shape.
*/
func prepared[Req any](op func(context.Context, Req) (gateway.PreparedTx, error)) http.HandlerFunc {
	return endpoint(func(rew http.ResponseWriter, req *http.Request) (gateway.PreparedTx, error) {
		var body Req
		err := decodeBody(rew, req, &body)
		if err != nil {
			return gateway.PreparedTx{}, err
		}
		return op(req.Context(), body)
	})
}

func (self handlers) balanceOf(rew http.ResponseWriter, req *http.Request) (balanceRes, error) {
	var body tokenReq
	err := decodeBody(rew, req, &body)
	if err != nil {
		return balanceRes{}, err
	}
	balance, err := self.service.BalanceOf(req.Context(), body.Token, body.Owner)
	return balanceRes{balance}, err
}

func (self handlers) allowance(rew http.ResponseWriter, req *http.Request) (allowanceRes, error) {
	var body tokenReq
	err := decodeBody(rew, req, &body)
	if err != nil {
		return allowanceRes{}, err
	}
	allowance, err := self.service.Allowance(req.Context(), body.Token, body.Owner, body.Spender)
	return allowanceRes{allowance}, err
}

func (self handlers) totalSupply(rew http.ResponseWriter, req *http.Request) (totalSupplyRes, error) {
	var body tokenReq
	err := decodeBody(rew, req, &body)
	if err != nil {
		return totalSupplyRes{}, err
	}
	supply, err := self.service.TotalSupply(req.Context(), body.Token)
	return totalSupplyRes{supply}, err
}

func (self handlers) decimals(rew http.ResponseWriter, req *http.Request) (decimalsRes, error) {
	var body tokenReq
	err := decodeBody(rew, req, &body)
	if err != nil {
		return decimalsRes{}, err
	}
	decimals, err := self.service.TokenDecimals(req.Context(), body.Token)
	return decimalsRes{decimals}, err
}

func (self handlers) signTransaction(rew http.ResponseWriter, req *http.Request) (signedRes, error) {
	var body signReq
	err := decodeBody(rew, req, &body)
	if err != nil {
		return signedRes{}, err
	}
	signed, err := self.service.SignTransaction(body.Tx, body.PrivateKey)
	if err != nil {
		return signedRes{}, err
	}
	return signedRes{SignedTx: eth.HexString(signed.Raw), TxHash: signed.Hash}, nil
}

func (self handlers) sendSignedTransaction(rew http.ResponseWriter, req *http.Request) (sentRes, error) {
	var body sendReq
	err := decodeBody(rew, req, &body)
	if err != nil {
		return sentRes{}, err
	}
	hash, err := self.service.SendSignedTransaction(req.Context(), body.SignedTx)
	return sentRes{hash}, err
}

func (self handlers) transaction(_ http.ResponseWriter, req *http.Request) (receiptRes, error) {
	hash, err := eth.ParseHash(chi.URLParam(req, "hash"))
	if err != nil {
		return receiptRes{}, errors.Wrap(errBadRequest, err.Error())
	}
	receipt, err := self.service.Receipt(req.Context(), hash)
	return receiptRes{receipt}, err
}

func (self handlers) health(http.ResponseWriter, *http.Request) (healthRes, error) {
	return healthRes{ChainID: self.service.Signer.ChainID}, nil
}
