package gateway

import (
	"context"

	"github.com/holiman/uint256"
	"github.com/pkg/errors"
	"github.com/purelabio/ethgate/eth"
)

/*
The gateway's operations, one per endpoint. Each runs the pipeline
validate -> build -> prepare -> encode and returns either a complete result or
an error, never a partial transaction. Built once at startup and shared by all
requests; holds no mutable state besides the decimals cache.
*/
type Service struct {
	Ledger   Ledger
	Helper   DisperseCollect
	Signer   Signer
	Decimals *DecimalsCache
}

func NewService(ledger Ledger, helper eth.Address, chainId uint64, decimals *DecimalsCache) *Service {
	return &Service{
		Ledger:   ledger,
		Helper:   DisperseCollect{Address: helper},
		Signer:   Signer{ChainID: chainId},
		Decimals: decimals,
	}
}

// Prepared, unsigned transaction along with its canonical hex encoding.
type PreparedTx struct {
	Tx    eth.TxMsg `json:"tx"`
	TxHex string    `json:"tx_hex"`
}

type TransferReq struct {
	Token     eth.Address `json:"token"`
	Sender    eth.Address `json:"sender"`
	Recipient eth.Address `json:"recipient"`
	Amount    string      `json:"amount"`
}

type ApproveReq struct {
	Token   eth.Address `json:"token"`
	Sender  eth.Address `json:"sender"`
	Spender eth.Address `json:"spender"`
	Amount  string      `json:"amount"`
}

type TransferFromReq struct {
	Token  eth.Address `json:"token"`
	Sender eth.Address `json:"sender"`
	From   eth.Address `json:"from"`
	To     eth.Address `json:"to"`
	Amount string      `json:"amount"`
}

type DisperseEtherReq struct {
	Sender     eth.Address   `json:"sender"`
	Recipients []eth.Address `json:"recipients"`
	Values     []string      `json:"values"`
	Value      string        `json:"value"`
}

type DisperseEtherByPercentReq struct {
	Sender      eth.Address   `json:"sender"`
	Recipients  []eth.Address `json:"recipients"`
	Percentages []Percentage  `json:"percentages"`
	Value       string        `json:"value"`
}

type DisperseTokenReq struct {
	Sender     eth.Address   `json:"sender"`
	Token      eth.Address   `json:"token"`
	Recipients []eth.Address `json:"recipients"`
	Values     []string      `json:"values"`
}

type DisperseTokenByPercentReq struct {
	Sender      eth.Address   `json:"sender"`
	Token       eth.Address   `json:"token"`
	Recipients  []eth.Address `json:"recipients"`
	Percentages []Percentage  `json:"percentages"`
}

type CollectEtherReq struct {
	Sender    eth.Address `json:"sender"`
	Recipient eth.Address `json:"recipient"`
	Value     string      `json:"value"`
}

type CollectTokenReq struct {
	Sender       eth.Address   `json:"sender"`
	Token        eth.Address   `json:"token"`
	Recipient    eth.Address   `json:"recipient"`
	Contributors []eth.Address `json:"contributors"`
	Values       []string      `json:"values"`
}

// Requires the sender to hold the amount.
func (self *Service) Transfer(ctx context.Context, req TransferReq) (PreparedTx, error) {
	err := requireAddrs("token", req.Token, "sender", req.Sender, "recipient", req.Recipient)
	if err != nil {
		return PreparedTx{}, err
	}
	amount, err := self.parseToken(ctx, req.Token, "amount", req.Amount)
	if err != nil {
		return PreparedTx{}, err
	}

	err = CheckTokenBalance(ctx, self.Ledger, req.Token, req.Sender, amount)
	if err != nil {
		return PreparedTx{}, err
	}
	return self.prepare(ctx, Erc20{req.Token}.Transfer(req.Sender, req.Recipient, amount))
}

func (self *Service) Approve(ctx context.Context, req ApproveReq) (PreparedTx, error) {
	err := requireAddrs("token", req.Token, "sender", req.Sender, "spender", req.Spender)
	if err != nil {
		return PreparedTx{}, err
	}
	amount, err := self.parseToken(ctx, req.Token, "amount", req.Amount)
	if err != nil {
		return PreparedTx{}, err
	}
	return self.prepare(ctx, Erc20{req.Token}.Approve(req.Sender, req.Spender, amount))
}

// Requires "from" to hold the amount and to allow the sender to spend it.
func (self *Service) TransferFrom(ctx context.Context, req TransferFromReq) (PreparedTx, error) {
	err := requireAddrs("token", req.Token, "sender", req.Sender, "from", req.From, "to", req.To)
	if err != nil {
		return PreparedTx{}, err
	}
	amount, err := self.parseToken(ctx, req.Token, "amount", req.Amount)
	if err != nil {
		return PreparedTx{}, err
	}

	err = CheckTokenBalance(ctx, self.Ledger, req.Token, req.From, amount)
	if err != nil {
		return PreparedTx{}, err
	}
	err = CheckAllowance(ctx, self.Ledger, req.Token, req.From, req.Sender, amount)
	if err != nil {
		return PreparedTx{}, err
	}
	return self.prepare(ctx, Erc20{req.Token}.TransferFrom(req.Sender, req.From, req.To, amount))
}

// Requires the sender to hold the attached value.
func (self *Service) DisperseEther(ctx context.Context, req DisperseEtherReq) (PreparedTx, error) {
	err := requireAddrs("sender", req.Sender)
	if err != nil {
		return PreparedTx{}, err
	}
	err = ValidateRecipients("recipients", req.Recipients, len(req.Values))
	if err != nil {
		return PreparedTx{}, err
	}
	values, err := parseAmounts("values", req.Values, eth.EtherDecimals)
	if err != nil {
		return PreparedTx{}, err
	}
	value, err := parseAmount("value", req.Value, eth.EtherDecimals)
	if err != nil {
		return PreparedTx{}, err
	}

	err = CheckBalance(ctx, self.Ledger, req.Sender, value)
	if err != nil {
		return PreparedTx{}, err
	}
	return self.prepare(ctx, self.Helper.DisperseEther(req.Sender, req.Recipients, values, value))
}

// Requires the sender to hold the attached value.
func (self *Service) DisperseEtherByPercent(ctx context.Context, req DisperseEtherByPercentReq) (PreparedTx, error) {
	err := requireAddrs("sender", req.Sender)
	if err != nil {
		return PreparedTx{}, err
	}
	err = ValidateRecipients("recipients", req.Recipients, len(req.Percentages))
	if err != nil {
		return PreparedTx{}, err
	}
	err = ValidatePercentages(req.Percentages)
	if err != nil {
		return PreparedTx{}, err
	}
	value, err := parseAmount("value", req.Value, eth.EtherDecimals)
	if err != nil {
		return PreparedTx{}, err
	}

	err = CheckBalance(ctx, self.Ledger, req.Sender, value)
	if err != nil {
		return PreparedTx{}, err
	}
	return self.prepare(ctx, self.Helper.DisperseEtherByPercent(req.Sender, req.Recipients, req.Percentages, value))
}

/*
Requires the sender to hold the total of the values and to allow the helper
contract to spend it.
*/
func (self *Service) DisperseToken(ctx context.Context, req DisperseTokenReq) (PreparedTx, error) {
	err := requireAddrs("sender", req.Sender, "token", req.Token)
	if err != nil {
		return PreparedTx{}, err
	}
	err = ValidateRecipients("recipients", req.Recipients, len(req.Values))
	if err != nil {
		return PreparedTx{}, err
	}
	decimals, err := self.decimals(ctx, req.Token)
	if err != nil {
		return PreparedTx{}, err
	}
	values, err := parseAmounts("values", req.Values, decimals)
	if err != nil {
		return PreparedTx{}, err
	}
	total, err := Sum(values)
	if err != nil {
		return PreparedTx{}, err
	}

	err = CheckTokenBalance(ctx, self.Ledger, req.Token, req.Sender, total)
	if err != nil {
		return PreparedTx{}, err
	}
	err = CheckAllowance(ctx, self.Ledger, req.Token, req.Sender, self.Helper.Address, total)
	if err != nil {
		return PreparedTx{}, err
	}
	return self.prepare(ctx, self.Helper.DisperseToken(req.Sender, req.Token, req.Recipients, values))
}

/*
The helper contract splits the sender's whole allowance to it. Requires the
allowance to be non-zero and covered by the sender's balance.
*/
func (self *Service) DisperseTokenByPercent(ctx context.Context, req DisperseTokenByPercentReq) (PreparedTx, error) {
	err := requireAddrs("sender", req.Sender, "token", req.Token)
	if err != nil {
		return PreparedTx{}, err
	}
	err = ValidateRecipients("recipients", req.Recipients, len(req.Percentages))
	if err != nil {
		return PreparedTx{}, err
	}
	err = ValidatePercentages(req.Percentages)
	if err != nil {
		return PreparedTx{}, err
	}

	allowance, err := RequireAllowance(ctx, self.Ledger, req.Token, req.Sender, self.Helper.Address)
	if err != nil {
		return PreparedTx{}, err
	}
	err = CheckTokenBalance(ctx, self.Ledger, req.Token, req.Sender, allowance)
	if err != nil {
		return PreparedTx{}, err
	}
	return self.prepare(ctx, self.Helper.DisperseTokenByPercent(req.Sender, req.Token, req.Recipients, req.Percentages))
}

// Requires the sender to hold the attached value.
func (self *Service) CollectEther(ctx context.Context, req CollectEtherReq) (PreparedTx, error) {
	err := requireAddrs("sender", req.Sender, "recipient", req.Recipient)
	if err != nil {
		return PreparedTx{}, err
	}
	value, err := parseAmount("value", req.Value, eth.EtherDecimals)
	if err != nil {
		return PreparedTx{}, err
	}

	err = CheckBalance(ctx, self.Ledger, req.Sender, value)
	if err != nil {
		return PreparedTx{}, err
	}
	return self.prepare(ctx, self.Helper.CollectEther(req.Sender, req.Recipient, value))
}

/*
Requires every contributor to hold their value and to allow the helper contract
to spend it.
*/
func (self *Service) CollectToken(ctx context.Context, req CollectTokenReq) (PreparedTx, error) {
	err := requireAddrs("sender", req.Sender, "token", req.Token, "recipient", req.Recipient)
	if err != nil {
		return PreparedTx{}, err
	}
	err = ValidateRecipients("contributors", req.Contributors, len(req.Values))
	if err != nil {
		return PreparedTx{}, err
	}
	decimals, err := self.decimals(ctx, req.Token)
	if err != nil {
		return PreparedTx{}, err
	}
	values, err := parseAmounts("values", req.Values, decimals)
	if err != nil {
		return PreparedTx{}, err
	}

	for i, contributor := range req.Contributors {
		err = CheckTokenBalance(ctx, self.Ledger, req.Token, contributor, values[i])
		if err != nil {
			return PreparedTx{}, err
		}
		err = CheckAllowance(ctx, self.Ledger, req.Token, contributor, self.Helper.Address, values[i])
		if err != nil {
			return PreparedTx{}, err
		}
	}
	return self.prepare(ctx, self.Helper.CollectToken(req.Sender, req.Token, req.Recipient, req.Contributors, values))
}

// Token balance of the owner, as decimal text.
func (self *Service) BalanceOf(ctx context.Context, token, owner eth.Address) (string, error) {
	err := requireAddrs("token", token, "owner", owner)
	if err != nil {
		return "", err
	}
	decimals, err := self.decimals(ctx, token)
	if err != nil {
		return "", err
	}
	balance, err := Erc20{token}.QueryBalanceOf(ctx, self.Ledger, owner)
	if err != nil {
		return "", err
	}
	return eth.FormatUnits(balance, decimals), nil
}

// How much the spender may move on behalf of the owner, as decimal text.
func (self *Service) Allowance(ctx context.Context, token, owner, spender eth.Address) (string, error) {
	err := requireAddrs("token", token, "owner", owner, "spender", spender)
	if err != nil {
		return "", err
	}
	decimals, err := self.decimals(ctx, token)
	if err != nil {
		return "", err
	}
	allowance, err := Erc20{token}.QueryAllowance(ctx, self.Ledger, owner, spender)
	if err != nil {
		return "", err
	}
	return eth.FormatUnits(allowance, decimals), nil
}

// Total supply of the token, as decimal text.
func (self *Service) TotalSupply(ctx context.Context, token eth.Address) (string, error) {
	err := requireAddrs("token", token)
	if err != nil {
		return "", err
	}
	decimals, err := self.decimals(ctx, token)
	if err != nil {
		return "", err
	}
	supply, err := Erc20{token}.QueryTotalSupply(ctx, self.Ledger)
	if err != nil {
		return "", err
	}
	return eth.FormatUnits(supply, decimals), nil
}

func (self *Service) TokenDecimals(ctx context.Context, token eth.Address) (uint8, error) {
	err := requireAddrs("token", token)
	if err != nil {
		return 0, err
	}
	return self.decimals(ctx, token)
}

/*
Signs a transaction with the given key. Meant for testing: real clients should
never send keys over the network.
*/
func (self *Service) SignTransaction(msg eth.TxMsg, privateKey string) (SignedTx, error) {
	return self.Signer.Sign(msg, privateKey)
}

// Validates and broadcasts a hex-encoded signed transaction.
func (self *Service) SendSignedTransaction(ctx context.Context, signedTx string) (eth.Hash, error) {
	raw, err := DecodeSignedTx(signedTx)
	if err != nil {
		return eth.Hash{}, err
	}
	return Broadcast(ctx, self.Ledger, raw)
}

func (self *Service) Receipt(ctx context.Context, hash eth.Hash) (*eth.TxReceipt, error) {
	return Receipt(ctx, self.Ledger, hash)
}

func (self *Service) prepare(ctx context.Context, msg eth.TxMsg) (PreparedTx, error) {
	msg, err := Prepare(ctx, self.Ledger, msg)
	if err != nil {
		return PreparedTx{}, err
	}
	txHex, err := self.Signer.HexTx(msg)
	if err != nil {
		return PreparedTx{}, err
	}
	return PreparedTx{Tx: msg, TxHex: txHex}, nil
}

func (self *Service) decimals(ctx context.Context, token eth.Address) (uint8, error) {
	if self.Decimals == nil {
		return Erc20{token}.QueryDecimals(ctx, self.Ledger)
	}
	return self.Decimals.Decimals(ctx, token)
}

func (self *Service) parseToken(ctx context.Context, token eth.Address, field, text string) (*uint256.Int, error) {
	decimals, err := self.decimals(ctx, token)
	if err != nil {
		return nil, err
	}
	return parseAmount(field, text, decimals)
}

func parseAmount(field, text string, decimals uint8) (*uint256.Int, error) {
	out, err := eth.ParseUnits(text, decimals)
	return out, errors.Wrapf(err, "invalid %v", field)
}

func parseAmounts(field string, texts []string, decimals uint8) ([]*uint256.Int, error) {
	out := make([]*uint256.Int, len(texts))
	for i, text := range texts {
		val, err := eth.ParseUnits(text, decimals)
		if err != nil {
			return nil, errors.Wrapf(err, "invalid %v[%d]", field, i)
		}
		out[i] = val
	}
	return out, nil
}

// Takes name-address pairs. Fails with "ErrInvalidInput" on the first zero address.
func requireAddrs(pairs ...interface{}) error {
	for i := 0; i+1 < len(pairs); i += 2 {
		if pairs[i+1].(eth.Address) == eth.ZeroAddress {
			return errors.Wrapf(ErrInvalidInput, "%v is missing or zero", pairs[i])
		}
	}
	return nil
}
