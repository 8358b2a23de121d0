package api

import (
	"context"
	"net/http"
	"net/url"

	"github.com/pkg/errors"

	"github.com/PabloGalante/tubot/internal/domain"
)

// BotClient is the signed-in user's roster as kept by tubot-api.
type BotClient struct {
	c     *Client
	token string
}

func (c *Client) Bots(accessToken string) *BotClient {
	return &BotClient{c: c, token: accessToken}
}

func (b *BotClient) List(ctx context.Context) ([]domain.Bot, error) {
	var out struct {
		Bots []domain.Bot `json:"bots"`
	}
	if err := b.c.do(ctx, http.MethodGet, "/bots", b.token, nil, &out); err != nil {
		return nil, mapStatus(err)
	}
	return out.Bots, nil
}

func (b *BotClient) Create(ctx context.Context, draft domain.BotDraft) (domain.Bot, error) {
	var out domain.Bot
	if err := b.c.do(ctx, http.MethodPost, "/bots", b.token, draft, &out); err != nil {
		return domain.Bot{}, mapStatus(err)
	}
	return out, nil
}

func (b *BotClient) Update(ctx context.Context, id domain.BotID, draft domain.BotDraft) (domain.Bot, error) {
	var out domain.Bot
	if err := b.c.do(ctx, http.MethodPut, "/bots/"+url.PathEscape(string(id)), b.token, draft, &out); err != nil {
		return domain.Bot{}, mapStatus(err)
	}
	return out, nil
}

func (b *BotClient) Delete(ctx context.Context, id domain.BotID) error {
	return mapStatus(b.c.do(ctx, http.MethodDelete, "/bots/"+url.PathEscape(string(id)), b.token, nil, nil))
}

func mapStatus(err error) error {
	var serr *StatusError
	if !errors.As(err, &serr) {
		return err
	}
	switch serr.Status {
	case http.StatusConflict:
		return errors.Wrap(domain.ErrRosterFull, serr.Error())
	case http.StatusNotFound:
		return errors.Wrap(domain.ErrBotNotFound, serr.Error())
	case http.StatusUnauthorized:
		return errors.Wrap(domain.ErrUnauthorized, serr.Error())
	}
	return err
}
