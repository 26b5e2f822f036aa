package vk

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"

	"golang.org/x/oauth2"
	vkendpoint "golang.org/x/oauth2/vk"

	"status-sentiment/internal/config"
)

var ErrMissingUserID = errors.New("VK token response has no user_id")

// Grant is the result of a successful code exchange.
type Grant struct {
	AccessToken string
	UserID      int64
}

// HistoryID is the userId under which imported statuses are stored.
func (g Grant) HistoryID() string {
	return "vk:" + strconv.FormatInt(g.UserID, 10)
}

// OAuth drives the VK authorization code flow.
type OAuth struct {
	config *oauth2.Config
}

func NewOAuth(cfg config.VKConfig) *OAuth {
	return &OAuth{config: &oauth2.Config{
		ClientID:     cfg.ClientID,
		ClientSecret: cfg.ClientSecret,
		RedirectURL:  cfg.RedirectURL,
		Scopes:       []string{"wall", "offline"},
		Endpoint:     vkendpoint.Endpoint,
	}}
}

// WithEndpoint replaces the VK authorization endpoints.
func (o *OAuth) WithEndpoint(endpoint oauth2.Endpoint) *OAuth {
	cfg := *o.config
	cfg.Endpoint = endpoint
	return &OAuth{config: &cfg}
}

// AuthURL is where the user is sent to grant access.
func (o *OAuth) AuthURL(state string) string {
	return o.config.AuthCodeURL(state)
}

// Exchange trades an authorization code for a token and the VK user id.
func (o *OAuth) Exchange(ctx context.Context, code string) (*Grant, error) {
	token, err := o.config.Exchange(ctx, code)
	if err != nil {
		return nil, fmt.Errorf("failed to exchange VK code: %w", err)
	}

	userID, err := parseUserID(token.Extra("user_id"))
	if err != nil {
		return nil, err
	}

	return &Grant{AccessToken: token.AccessToken, UserID: userID}, nil
}

func parseUserID(raw any) (int64, error) {
	switch v := raw.(type) {
	case float64:
		return int64(v), nil
	case json.Number:
		return v.Int64()
	case string:
		id, err := strconv.ParseInt(v, 10, 64)
		if err != nil {
			return 0, fmt.Errorf("%w: %q", ErrMissingUserID, v)
		}
		return id, nil
	default:
		return 0, ErrMissingUserID
	}
}
