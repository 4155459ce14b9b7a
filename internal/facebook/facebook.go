// Package facebook posts image sets to a Facebook Page through the Graph
// API. Photos are uploaded unpublished and attached to a single feed post;
// when that fails the first photo is posted alone so a run still produces
// something visible.
package facebook

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/go-resty/resty/v2"
	"github.com/rs/zerolog/log"
)

const defaultBaseURL = "https://graph.facebook.com/v19.0"

// Client posts to one Page.
type Client struct {
	http   *resty.Client
	pageID string
	token  string
}

// NewClient builds a Graph API client. baseURL is overridable for tests;
// empty means the production Graph origin.
func NewClient(baseURL, pageID, accessToken string) *Client {
	if baseURL == "" {
		baseURL = defaultBaseURL
	}
	client := resty.New()
	client.SetBaseURL(baseURL)
	client.SetTimeout(30 * time.Second)
	return &Client{http: client, pageID: pageID, token: accessToken}
}

type account struct {
	ID          string `json:"id"`
	AccessToken string `json:"access_token"`
}

type accountsResponse struct {
	Data []account `json:"data"`
}

type uploadResponse struct {
	ID     string `json:"id"`
	PostID string `json:"post_id"`
}

// ResolvePageToken exchanges a user token for the Page's own token when the
// configured token can manage the Page. If the lookup fails the existing
// token is kept; it may already be a Page token.
func (c *Client) ResolvePageToken(ctx context.Context) {
	var accounts accountsResponse
	res, err := c.http.R().
		SetContext(ctx).
		SetQueryParam("access_token", c.token).
		SetResult(&accounts).
		Get("/me/accounts")
	if err != nil || res.StatusCode() != 200 {
		log.Info().Msg("could not list managed pages; assuming token is already a page token")
		return
	}
	for _, a := range accounts.Data {
		if a.ID == c.pageID && a.AccessToken != "" {
			log.Info().Msg("resolved page access token from user token")
			c.token = a.AccessToken
			return
		}
	}
}

// PostImages publishes images as one feed post with the given caption.
func (c *Client) PostImages(ctx context.Context, caption string, images [][]byte) error {
	if c.pageID == "" || c.token == "" {
		return fmt.Errorf("facebook page id or access token not configured")
	}
	if len(images) == 0 {
		return fmt.Errorf("no images to post")
	}

	var attached []map[string]string
	for i, img := range images {
		photoID, err := c.uploadUnpublished(ctx, i+1, img)
		if err != nil {
			log.Warn().Err(err).Int("image", i+1).Msg("photo upload failed")
			continue
		}
		attached = append(attached, map[string]string{"media_fbid": photoID})
	}
	if len(attached) == 0 {
		return fmt.Errorf("no photos uploaded successfully")
	}

	attachedJSON, err := json.Marshal(attached)
	if err != nil {
		return err
	}
	res, err := c.http.R().
		SetContext(ctx).
		SetFormData(map[string]string{
			"message":        caption,
			"attached_media": string(attachedJSON),
			"access_token":   c.token,
		}).
		Post("/" + c.pageID + "/feed")
	if err == nil && res.StatusCode() == 200 {
		return nil
	}
	if err == nil {
		err = fmt.Errorf("feed post status %d: %s", res.StatusCode(), res.String())
	}
	log.Warn().Err(err).Msg("combined post failed; falling back to single photo")
	return c.postSingle(ctx, caption, images[0])
}

func (c *Client) uploadUnpublished(ctx context.Context, n int, img []byte) (string, error) {
	var uploaded uploadResponse
	res, err := c.http.R().
		SetContext(ctx).
		SetFileReader("source", fmt.Sprintf("image_%d.jpg", n), bytes.NewReader(img)).
		SetFormData(map[string]string{
			"published":    "false",
			"access_token": c.token,
		}).
		SetResult(&uploaded).
		Post("/" + c.pageID + "/photos")
	if err != nil {
		return "", err
	}
	if res.StatusCode() != 200 {
		return "", fmt.Errorf("photo upload status %d: %s", res.StatusCode(), res.String())
	}
	id := uploaded.ID
	if id == "" {
		id = uploaded.PostID
	}
	if id == "" {
		return "", fmt.Errorf("upload returned no photo id")
	}
	return id, nil
}

func (c *Client) postSingle(ctx context.Context, caption string, img []byte) error {
	res, err := c.http.R().
		SetContext(ctx).
		SetFileReader("source", "front_page.jpg", bytes.NewReader(img)).
		SetFormData(map[string]string{
			"message":      caption,
			"access_token": c.token,
		}).
		Post("/" + c.pageID + "/photos")
	if err != nil {
		return err
	}
	if res.StatusCode() != 200 {
		return fmt.Errorf("fallback post status %d: %s", res.StatusCode(), res.String())
	}
	return nil
}
