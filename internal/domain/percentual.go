package domain

import (
	"encoding/json"
	"fmt"
	"math"
	"math/big"
	"strconv"
	"strings"
)

// Percentual é um percentual em centésimos (2500 == "25.00").
type Percentual int64

// CalcularPercentual arredonda votaram/eleitores*100 para duas casas, metade para cima.
// Eleitorado zerado produz 0. A conta é feita em big.Int e satura em math.MaxInt64.
func CalcularPercentual(votaram, eleitores int64) Percentual {
	if eleitores <= 0 || votaram <= 0 {
		return 0
	}
	e := big.NewInt(eleitores)
	n := new(big.Int).Mul(big.NewInt(votaram), big.NewInt(20000))
	n.Add(n, e)
	n.Quo(n, new(big.Int).Lsh(e, 1))
	if !n.IsInt64() {
		return Percentual(math.MaxInt64)
	}
	return Percentual(n.Int64())
}

func (p Percentual) String() string {
	return fmt.Sprintf("%d.%02d", int64(p)/100, int64(p)%100)
}

func (p Percentual) Float64() float64 {
	return float64(p) / 100
}

func (p Percentual) MarshalJSON() ([]byte, error) {
	return json.Marshal(p.String())
}

func (p *Percentual) UnmarshalJSON(data []byte) error {
	var raw string
	if err := json.Unmarshal(data, &raw); err != nil {
		return fmt.Errorf("percentual: esperado string: %w", err)
	}
	inteiro, fracao, ok := strings.Cut(raw, ".")
	if !ok || len(fracao) != 2 {
		return fmt.Errorf("percentual: formato invalido %q", raw)
	}
	i, err := strconv.ParseInt(inteiro, 10, 64)
	if err != nil {
		return fmt.Errorf("percentual: parte inteira invalida %q: %w", raw, err)
	}
	f, err := strconv.ParseInt(fracao, 10, 64)
	if err != nil || f < 0 {
		return fmt.Errorf("percentual: casas decimais invalidas %q", raw)
	}
	*p = Percentual(i*100 + f)
	return nil
}
