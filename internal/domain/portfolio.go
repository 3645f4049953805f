package domain

import "fmt"

// Wallet holds one currency's balance. Balance never goes negative.
type Wallet struct {
	CurrencyCode string
	Balance      float64
}

func (w *Wallet) Deposit(amount float64) error {
	if err := ValidateAmount(amount); err != nil {
		return err
	}
	w.Balance += amount
	return nil
}

func (w *Wallet) Withdraw(amount float64) error {
	if err := ValidateAmount(amount); err != nil {
		return err
	}
	if amount > w.Balance {
		return fmt.Errorf("%w: have %.4f %s, need %.4f %s",
			ErrInsufficientFunds, w.Balance, w.CurrencyCode, amount, w.CurrencyCode)
	}
	w.Balance -= amount
	return nil
}

// Portfolio is the set of wallets owned by one user, one wallet per
// currency code. Mutations happen on an in-memory copy and are persisted
// in a single write.
type Portfolio struct {
	UserID  int64
	Wallets map[string]*Wallet
}

func NewPortfolio(userID int64) Portfolio {
	return Portfolio{UserID: userID, Wallets: map[string]*Wallet{}}
}

// EnsureWallet returns the wallet for code, creating it with zero balance
// when absent.
func (p *Portfolio) EnsureWallet(code string) *Wallet {
	if p.Wallets == nil {
		p.Wallets = map[string]*Wallet{}
	}
	w, ok := p.Wallets[code]
	if !ok {
		w = &Wallet{CurrencyCode: code}
		p.Wallets[code] = w
	}
	return w
}

// Wallet returns the wallet for code or ErrCurrencyNotFound when the user
// holds no such wallet.
func (p *Portfolio) Wallet(code string) (*Wallet, error) {
	w, ok := p.Wallets[code]
	if !ok {
		return nil, fmt.Errorf("%w: no %s wallet", ErrCurrencyNotFound, code)
	}
	return w, nil
}

// Clone deep-copies the portfolio so a failed operation leaves the loaded
// state untouched.
func (p Portfolio) Clone() Portfolio {
	out := NewPortfolio(p.UserID)
	for code, w := range p.Wallets {
		cp := *w
		out.Wallets[code] = &cp
	}
	return out
}
