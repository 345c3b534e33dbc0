package eth

import (
	"strings"

	"github.com/holiman/uint256"
	"github.com/pkg/errors"
)

// Decimal count of ether: 1 ether = 10^18 wei.
const EtherDecimals = 18

// Returned (wrapped) by "ParseUnits" for any input it refuses to convert.
var ErrMalformedAmount = errors.New("malformed amount")

/*
Converts human-readable decimal text into an integer amount of the smallest
unit, scaled by 10^decimals. Exact: no floats are involved.

The input consists of ASCII digits with at most one decimal point. Either side
of the point may be empty, but not both. Signs, exponents, whitespace and digit
separators are rejected. A fractional part with more digits than "decimals" is
rejected rather than truncated or rounded, and so is any result that doesn't
fit in 256 bits. All failures wrap "ErrMalformedAmount".

Examples:

	ParseUnits("1.5", 2)    // 150
	ParseUnits("0.001", 18) // 1_000_000_000_000_000
	ParseUnits("1.2.3", 2)  // error
*/
func ParseUnits(text string, decimals uint8) (*uint256.Int, error) {
	whole, frac, hasPoint := strings.Cut(text, ".")
	if strings.IndexByte(frac, '.') >= 0 {
		return nil, errors.Wrapf(ErrMalformedAmount, "%q has more than one decimal point", text)
	}
	if whole == "" && (!hasPoint || frac == "") {
		return nil, errors.Wrapf(ErrMalformedAmount, "%q has no digits", text)
	}
	if whole != "" && !isDigits(stringToBytesUnsafe(whole)) {
		return nil, errors.Wrapf(ErrMalformedAmount, "%q: integer part is not a decimal number", text)
	}
	if frac != "" && !isDigits(stringToBytesUnsafe(frac)) {
		return nil, errors.Wrapf(ErrMalformedAmount, "%q: fractional part is not a decimal number", text)
	}
	if len(frac) > int(decimals) {
		return nil, errors.Wrapf(ErrMalformedAmount, "%q has %d fractional digits, token allows %d",
			text, len(frac), decimals)
	}

	// int * 10^decimals + frac is exactly the concatenation of the integer
	// digits and the right-padded fraction.
	var buf strings.Builder
	buf.Grow(len(whole) + int(decimals))
	buf.WriteString(whole)
	buf.WriteString(frac)
	for i := len(frac); i < int(decimals); i++ {
		buf.WriteByte('0')
	}

	out, err := uint256.FromDecimal(trimLeadingZeros(buf.String()))
	if err != nil {
		return nil, errors.Wrapf(ErrMalformedAmount, "%q with %d decimals overflows 256 bits", text, decimals)
	}
	return out, nil
}

/*
Converts an integer amount of the smallest unit into human-readable decimal
text. Trailing fractional zeros are stripped, and the point is omitted when the
fraction is empty:

	FormatUnits(uint256.NewInt(1500000), 6) // "1.5"
	FormatUnits(uint256.NewInt(0), 18)      // "0"

A nil amount formats as "0". The output always parses back to the same amount
via "ParseUnits".
*/
func FormatUnits(amount *uint256.Int, decimals uint8) string {
	if amount == nil || amount.IsZero() {
		return "0"
	}

	// Splitting the decimal digits is the same as dividing by 10^decimals, and
	// keeps working for decimal counts where 10^decimals exceeds 256 bits.
	digits := amount.Dec()
	width := int(decimals)
	if len(digits) <= width {
		digits = strings.Repeat("0", width-len(digits)+1) + digits
	}

	whole := digits[:len(digits)-width]
	frac := strings.TrimRight(digits[len(digits)-width:], "0")
	if frac == "" {
		return whole
	}
	return whole + "." + frac
}

// Same as "ParseUnits" with 18 decimals.
func ParseEther(text string) (*uint256.Int, error) {
	return ParseUnits(text, EtherDecimals)
}

// Same as "FormatUnits" with 18 decimals.
func FormatEther(amount *uint256.Int) string {
	return FormatUnits(amount, EtherDecimals)
}
