package gateway

import (
	"context"
	"net/http"
	"net/url"

	"github.com/brizzai/resy-client/internal/apperror"
	"github.com/brizzai/resy-client/internal/logger"
	"github.com/brizzai/resy-client/internal/models"
	"github.com/brizzai/resy-client/internal/phone"
	"github.com/brizzai/resy-client/internal/requester"
	"go.uber.org/zap"
)

// SendVerificationCode asks the provider to text a one-time code to phoneNumber.
// Invalid numbers fail before any request is made.
func (c *Client) SendVerificationCode(ctx context.Context, phoneNumber string) error {
	formatted := phone.Format(phoneNumber)
	if !phone.IsValid(formatted) {
		return apperror.New(apperror.KindInvalidPhoneNumber)
	}

	deviceToken := c.rotateDeviceToken()
	_, err := c.do(ctx, &requester.Request{
		Method: http.MethodPost,
		Path:   pathAuthMobile,
		Form: url.Values{
			"mobile_number":  {formatted},
			"method":         {"sms"},
			"device_type_id": {c.deviceTypeID},
			"device_token":   {deviceToken},
		},
	})
	if err != nil {
		return err
	}

	logger.Info("verification code sent", logger.Redact("mobile_number", formatted))
	return nil
}

// VerifyCode exchanges the code for either a session or a challenge
func (c *Client) VerifyCode(ctx context.Context, code, phoneNumber string) (*models.VerifyResult, error) {
	resp, err := c.do(ctx, &requester.Request{
		Method: http.MethodPost,
		Path:   pathAuthMobile,
		Form: url.Values{
			"mobile_number":  {phone.Format(phoneNumber)},
			"code":           {code},
			"device_type_id": {c.deviceTypeID},
			"device_token":   {c.DeviceToken()},
		},
	})
	if err != nil {
		return nil, err
	}

	result, err := decodeVerifyResult(resp.Body, c.now())
	if err != nil {
		logger.Error("failed to decode verification response", zap.Error(err))
		return nil, apperror.Wrap(apperror.KindInvalidResponse, err)
	}

	logger.Info("verification code accepted", zap.String("result", string(result.Kind)))
	return result, nil
}

// CompleteChallenge answers the challenge with the account's email address
func (c *Client) CompleteChallenge(ctx context.Context, challengeID, email string) (*models.Session, error) {
	resp, err := c.do(ctx, &requester.Request{
		Method: http.MethodPost,
		Path:   pathAuthChallenge,
		Form: url.Values{
			"challenge_id":   {challengeID},
			"em_address":     {email},
			"device_token":   {c.DeviceToken()},
			"device_type_id": {c.deviceTypeID},
		},
	})
	if err != nil {
		return nil, err
	}

	session, err := decodeSession(resp.Body, c.now())
	if err != nil {
		logger.Error("failed to decode challenge response", zap.Error(err))
		return nil, apperror.Wrap(apperror.KindInvalidResponse, err)
	}

	logger.Info("challenge completed", zap.Int64("user_id", session.UserID))
	return session, nil
}
