package redis

import (
	"context"
	"fmt"
	"sort"
	"strconv"

	"github.com/redis/go-redis/v9"

	"github.com/marcelojr/participacao-mesas/internal/domain"
)

// Só sobrescreve quando o total novo é maior: eventos repetidos ou fora de ordem não regridem o painel.
var registrarMaximo = redis.NewScript(`
local atual = tonumber(redis.call('HGET', KEYS[1], ARGV[1]) or '0')
local novo = tonumber(ARGV[2])
if novo > atual then
  redis.call('HSET', KEYS[1], ARGV[1], ARGV[2])
  return novo
end
return atual
`)

// Painel mantém, por escola, o último total conhecido de cada mesa e as mesas já encerradas.
type Painel struct {
	client *redis.Client
	prefix string
}

func NewPainel(client *redis.Client, prefix string) *Painel {
	return &Painel{
		client: client,
		prefix: prefix,
	}
}

func (p *Painel) RegistrarTotal(ctx context.Context, mesa domain.Mesa, total int64) (int64, error) {
	vigente, err := registrarMaximo.Run(ctx, p.client, []string{p.keyTotais(mesa.Escola)}, mesa.Numero, total).Int64()
	if err != nil {
		return 0, fmt.Errorf("redis painel: registrar total %s: %w", mesa, err)
	}
	return vigente, nil
}

func (p *Painel) RegistrarEncerramento(ctx context.Context, mesa domain.Mesa) error {
	if err := p.client.SAdd(ctx, p.keyEncerradas(mesa.Escola), mesa.Numero).Err(); err != nil {
		return fmt.Errorf("redis painel: registrar encerramento %s: %w", mesa, err)
	}
	return nil
}

func (p *Painel) ObterEscola(ctx context.Context, escola string) (domain.PainelEscola, error) {
	// Pipeline lê totais e encerradas num só round-trip.
	pipe := p.client.Pipeline()
	totaisCmd := pipe.HGetAll(ctx, p.keyTotais(escola))
	encerradasCmd := pipe.SMembers(ctx, p.keyEncerradas(escola))
	if _, err := pipe.Exec(ctx); err != nil {
		return domain.PainelEscola{}, fmt.Errorf("redis painel: ler escola %s: %w", escola, err)
	}

	painel := domain.PainelEscola{
		Escola:          escola,
		TotaisPorMesa:   make(map[string]int64, len(totaisCmd.Val())),
		MesasEncerradas: encerradasCmd.Val(),
	}
	for mesa, raw := range totaisCmd.Val() {
		total, err := strconv.ParseInt(raw, 10, 64)
		if err != nil {
			return domain.PainelEscola{}, fmt.Errorf("redis painel: valor invalido para %s/%s: %w", escola, mesa, err)
		}
		painel.TotaisPorMesa[mesa] = total
		painel.TotalVotaramGeral += total
	}
	sort.Strings(painel.MesasEncerradas)
	if painel.MesasEncerradas == nil {
		painel.MesasEncerradas = []string{}
	}

	return painel, nil
}

func (p *Painel) keyTotais(escola string) string {
	return p.key(fmt.Sprintf("escola:%s:totais", escola))
}

func (p *Painel) keyEncerradas(escola string) string {
	return p.key(fmt.Sprintf("escola:%s:encerradas", escola))
}

func (p *Painel) key(chave string) string {
	if p.prefix == "" {
		return chave
	}
	return fmt.Sprintf("%s:%s", p.prefix, chave)
}

var _ domain.Painel = (*Painel)(nil)
