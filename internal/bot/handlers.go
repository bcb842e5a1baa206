package bot

import (
	"context"
	"fmt"
	"time"
)

func (b *Bot) handleStart(chatID int64) {
	b.reply(chatID, `Bem-vindo ao LegisRadar!

Acompanho as matérias em tramitação no Senado Federal, a agenda de
reuniões e as notícias relacionadas às palavras-chave configuradas.

Comandos:
/latest [n] — últimas matérias rastreadas
/agenda — próximas reuniões relacionadas
/status — totais armazenados

Use /help para a referência completa.`)
}

func (b *Bot) handleHelp(chatID int64) {
	b.reply(chatID, `Comandos disponíveis:
/latest [n] — mostra as últimas n matérias (padrão 5, máximo 20)
/agenda — reuniões futuras relacionadas às matérias acompanhadas
/status — quantidade de matérias, reuniões e notícias armazenadas

As notificações de novas matérias e notícias são enviadas
automaticamente ao chat configurado.`)
}

func (b *Bot) handleLatest(ctx context.Context, chatID int64, args string) {
	limit := ParseLimitArg(args, defaultListLimit, maxListLimit)

	bills, err := b.store.ListRecentBills(ctx, limit)
	if err != nil {
		b.reply(chatID, fmt.Sprintf("Erro ao consultar matérias: %v", err))
		return
	}
	b.reply(chatID, FormatBillList(bills))
}

func (b *Bot) handleAgenda(ctx context.Context, chatID int64) {
	events, err := b.store.ListUpcomingEvents(ctx, time.Now(), maxListLimit)
	if err != nil {
		b.reply(chatID, fmt.Sprintf("Erro ao consultar a agenda: %v", err))
		return
	}
	b.reply(chatID, FormatEventList(events, b.cfg.Location()))
}

func (b *Bot) handleStatus(ctx context.Context, chatID int64) {
	counts, err := b.store.Counts(ctx)
	if err != nil {
		b.reply(chatID, fmt.Sprintf("Erro ao consultar o banco: %v", err))
		return
	}
	b.reply(chatID, FormatStatus(counts))
}
