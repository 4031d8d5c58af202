package engine

import (
	"math/big"
	"regexp"
	"strings"

	"github.com/ethereum/go-ethereum/params"
	"github.com/pkg/errors"
)

var (
	weiPerEther   = big.NewInt(params.Ether)
	decimalAmount = regexp.MustCompile(`^(\d+\.?\d*|\.\d+)$`)
)

// ParseEther 将以 ether 计的十进制字符串转换为 wei
func ParseEther(amount string) (*big.Int, error) {
	s := strings.TrimSpace(amount)
	if !decimalAmount.MatchString(s) {
		return nil, errors.Errorf("invalid amount %q", amount)
	}
	r, ok := new(big.Rat).SetString(s)
	if !ok {
		return nil, errors.Errorf("invalid amount %q", amount)
	}
	r.Mul(r, new(big.Rat).SetInt(weiPerEther))
	if !r.IsInt() {
		return nil, errors.Errorf("amount %q has more than 18 decimal places", amount)
	}
	return new(big.Int).Set(r.Num()), nil
}

// FormatEther 将 wei 转为 ether 十进制字符串 小数部分至少保留一位 1e18 -> "1.0"
func FormatEther(wei *big.Int) string {
	if wei == nil {
		return "0.0"
	}
	abs := new(big.Int).Abs(wei)
	whole, rem := new(big.Int).QuoRem(abs, weiPerEther, new(big.Int))

	frac := rem.String()
	frac = strings.Repeat("0", 18-len(frac)) + frac
	frac = strings.TrimRight(frac, "0")
	if frac == "" {
		frac = "0"
	}

	sign := ""
	if wei.Sign() < 0 {
		sign = "-"
	}
	return sign + whole.String() + "." + frac
}
