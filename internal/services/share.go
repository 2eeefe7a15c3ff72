package services

import (
	"context"
	"fmt"
	"net/url"
	"strings"

	"github.com/skip2/go-qrcode"
)

// ShareURL returns the board link that focuses pollID
func ShareURL(baseURL, groupID, pollID string) string {
	return fmt.Sprintf("%s/groups/%s#%s", strings.TrimSuffix(baseURL, "/"), url.PathEscape(groupID), pollID)
}

// ShareQR renders a PNG QR code linking to the poll on the board
func (s *PollService) ShareQR(ctx context.Context, groupID, pollID, baseURL string) ([]byte, error) {
	if _, err := s.GetPoll(ctx, groupID, pollID); err != nil {
		return nil, err
	}
	if baseURL == "" {
		return nil, fmt.Errorf("base url not configured")
	}
	return qrcode.Encode(ShareURL(baseURL, groupID, pollID), qrcode.Medium, 256)
}
