package contract

import (
	"fmt"
	"math/big"

	"github.com/ethereum/go-ethereum/accounts/abi"
	"github.com/ethereum/go-ethereum/common"
	"github.com/holiman/uint256"

	"github.com/marvinkome/tada/internal/ledger"
	"github.com/marvinkome/tada/internal/market"
	"github.com/marvinkome/tada/internal/tada"
)

// Backend exposes the deployed contracts calls are routed to.
type Backend interface {
	ShillToken() *ledger.Ledger
	TaDa() *tada.TaDa
}

// Message is one call into a contract. ReadOnly calls may only reach view
// functions.
type Message struct {
	From     common.Address
	To       common.Address
	Data     []byte
	ReadOnly bool
}

// Result is the ABI-encoded return data of a dispatched call.
type Result struct {
	Kind   string
	Method string
	Output []byte
}

// erc20 is the token surface shared by ShillToken and every creator token.
type erc20 interface {
	Name() string
	Symbol() string
	Decimals() uint8
	TotalSupply() *uint256.Int
	BalanceOf(common.Address) *uint256.Int
	Allowance(owner, spender common.Address) *uint256.Int
	Transfer(from, to common.Address, amount *uint256.Int) error
	Approve(owner, spender common.Address, amount *uint256.Int) error
	TransferFrom(spender, owner, to common.Address, amount *uint256.Int) error
}

// Dispatcher decodes calldata by selector and runs it against the backend.
type Dispatcher struct {
	backend Backend
}

func NewDispatcher(b Backend) *Dispatcher {
	return &Dispatcher{backend: b}
}

// KindOf returns the built-in kind deployed at addr.
func (d *Dispatcher) KindOf(addr common.Address) (string, error) {
	switch {
	case addr == d.backend.ShillToken().Address():
		return KindShillToken, nil
	case addr == d.backend.TaDa().Address():
		return KindTaDa, nil
	}
	if _, ok := d.backend.TaDa().Creator(addr); ok {
		return KindCreatorToken, nil
	}
	return "", fmt.Errorf("%w at %s", ErrUnknownContract, addr.Hex())
}

// Dispatch executes msg. On failure the returned Result still names the
// method when the calldata could be decoded that far.
func (d *Dispatcher) Dispatch(msg Message) (*Result, error) {
	kind, err := d.KindOf(msg.To)
	if err != nil {
		return nil, err
	}
	a, err := BuiltinABI(kind)
	if err != nil {
		return nil, err
	}
	if len(msg.Data) < 4 {
		return &Result{Kind: kind}, fmt.Errorf("%w: %d bytes", ErrBadCalldata, len(msg.Data))
	}
	method, err := a.MethodById(msg.Data[:4])
	if err != nil {
		return &Result{Kind: kind}, fmt.Errorf("%w: selector 0x%x on %s", ErrUnknownMethod, msg.Data[:4], kind)
	}
	res := &Result{Kind: kind, Method: method.Name}
	if msg.ReadOnly && !method.IsConstant() {
		return res, fmt.Errorf("%w: %s", ErrNotReadOnly, method.Sig)
	}
	args, err := method.Inputs.Unpack(msg.Data[4:])
	if err != nil {
		return res, fmt.Errorf("%w: %s: %v", ErrBadCalldata, method.Sig, err)
	}

	var outs []interface{}
	switch kind {
	case KindShillToken:
		outs, err = d.callToken(d.backend.ShillToken(), msg.From, method, args)
	case KindCreatorToken:
		m, _ := d.backend.TaDa().Creator(msg.To)
		outs, err = d.callCreator(m, msg.From, method, args)
	case KindTaDa:
		outs, err = d.callTaDa(msg.From, method, args)
	}
	if err != nil {
		return res, err
	}

	res.Output, err = method.Outputs.Pack(outs...)
	if err != nil {
		return res, fmt.Errorf("packing %s result: %w", method.Name, err)
	}
	return res, nil
}

func (d *Dispatcher) callToken(t erc20, from common.Address, method *abi.Method, args []interface{}) ([]interface{}, error) {
	switch method.Name {
	case "name":
		return out(t.Name())
	case "symbol":
		return out(t.Symbol())
	case "decimals":
		return out(t.Decimals())
	case "totalSupply":
		return out(t.TotalSupply().ToBig())
	case "balanceOf":
		return out(t.BalanceOf(argAddress(args, 0)).ToBig())
	case "allowance":
		return out(t.Allowance(argAddress(args, 0), argAddress(args, 1)).ToBig())
	case "transfer":
		amount, err := argUint(args, 1)
		if err != nil {
			return nil, err
		}
		if err := t.Transfer(from, argAddress(args, 0), amount); err != nil {
			return nil, err
		}
		return out(true)
	case "approve":
		amount, err := argUint(args, 1)
		if err != nil {
			return nil, err
		}
		if err := t.Approve(from, argAddress(args, 0), amount); err != nil {
			return nil, err
		}
		return out(true)
	case "transferFrom":
		amount, err := argUint(args, 2)
		if err != nil {
			return nil, err
		}
		if err := t.TransferFrom(from, argAddress(args, 0), argAddress(args, 1), amount); err != nil {
			return nil, err
		}
		return out(true)
	}
	return nil, fmt.Errorf("%w: %s", ErrUnknownMethod, method.Sig)
}

func (d *Dispatcher) callCreator(m *market.Market, from common.Address, method *abi.Method, args []interface{}) ([]interface{}, error) {
	switch method.Name {
	case "reserveBalance":
		return out(m.ReserveBalance().ToBig())
	case "spotPrice":
		return outUint(m.SpotPrice())
	case "estimateBuyPrice", "calculateBuyPrice", "calculateSellPrice":
		amount, err := argUint(args, 0)
		if err != nil {
			return nil, err
		}
		switch method.Name {
		case "estimateBuyPrice":
			return outUint(m.EstimateBuyPrice(amount))
		case "calculateBuyPrice":
			return outUint(m.CalculateBuyPrice(amount))
		}
		return outUint(m.CalculateSellPrice(amount))
	case "buy", "buyWithMinOut", "sell", "sellWithMinOut":
		amount, err := argUint(args, 0)
		if err != nil {
			return nil, err
		}
		var minOut *uint256.Int
		if len(args) > 1 {
			if minOut, err = argUint(args, 1); err != nil {
				return nil, err
			}
		}
		var tr *market.Trade
		if method.Name == "buy" || method.Name == "buyWithMinOut" {
			tr, err = m.BuyWithMinOut(from, amount, minOut)
		} else {
			tr, err = m.SellWithMinOut(from, amount, minOut)
		}
		if err != nil {
			return nil, err
		}
		return out(tr.AmountOut.ToBig())
	}
	return d.callToken(m, from, method, args)
}

func (d *Dispatcher) callTaDa(from common.Address, method *abi.Method, args []interface{}) ([]interface{}, error) {
	t := d.backend.TaDa()
	switch method.Name {
	case "token":
		return out(t.Token().Address())
	case "owner":
		return out(t.Owner())
	case "faucetAmount":
		return out(t.FaucetAmount().ToBig())
	case "hasFaucetAddress":
		return out(t.HasFaucetAddress(argAddress(args, 0)))
	case "getCreatorToken":
		infos := t.CreatorTokens()
		names := make([]string, len(infos))
		symbols := make([]string, len(infos))
		tokens := make([]common.Address, len(infos))
		for i, c := range infos {
			names[i], symbols[i], tokens[i] = c.Name, c.Symbol, c.Address
		}
		return out(names, symbols, tokens)
	case "makeCreatorToken":
		m, err := t.MakeCreatorToken(from, argString(args, 0), argString(args, 1))
		if err != nil {
			return nil, err
		}
		return out(m.Address())
	case "faucetToken":
		return nil, t.FaucetToken(from, argAddress(args, 0), argString(args, 1))
	}
	return nil, fmt.Errorf("%w: %s", ErrUnknownMethod, method.Sig)
}

// --- argument helpers ---

func out(vals ...interface{}) ([]interface{}, error) {
	return vals, nil
}

func outUint(v *uint256.Int, err error) ([]interface{}, error) {
	if err != nil {
		return nil, err
	}
	return []interface{}{v.ToBig()}, nil
}

func argAddress(args []interface{}, i int) common.Address {
	a, _ := args[i].(common.Address)
	return a
}

func argString(args []interface{}, i int) string {
	s, _ := args[i].(string)
	return s
}

func argUint(args []interface{}, i int) (*uint256.Int, error) {
	b, ok := args[i].(*big.Int)
	if !ok {
		return nil, fmt.Errorf("%w: argument %d is %T", ErrBadCalldata, i, args[i])
	}
	v, overflow := uint256.FromBig(b)
	if overflow {
		return nil, fmt.Errorf("%w: argument %d exceeds uint256", ErrBadCalldata, i)
	}
	return v, nil
}
