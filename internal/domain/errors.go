package domain

import "errors"

var ErrNotFound = errors.New("registro nao encontrado")

// Erros nomeados que a borda traduz para mensagens e status.
var (
	ErrMesaInvalida              = errors.New("mesa invalida")
	ErrEleitoradoNaoEncontrado   = errors.New("eleitorado da mesa nao cadastrado")
	ErrParticipacaoNaoEncontrada = errors.New("participacao da mesa nao iniciada")
	ErrMesaEncerrada             = errors.New("mesa ja encerrada")
	ErrDeltaInvalido             = errors.New("quantidade de votos invalida")
	ErrSessaoInvalida            = errors.New("sessao invalida ou expirada")

	ErrChaveIdempotenciaObrigatoria = errors.New("chave de idempotencia obrigatoria")
	ErrChaveIdempotenciaInvalida    = errors.New("chave de idempotencia invalida")
	ErrConflitoIdempotencia         = errors.New("chave de idempotencia reutilizada com outra submissao")

	// ErrRegistroDuplicado sinaliza que outra transação gravou a mesma chave primeiro.
	ErrRegistroDuplicado = errors.New("registro com chave de idempotencia ja existente")
)
