package utils

import (
	"context"
	"encoding/base64"
	"fmt"
	"net/url"
	"os"
	"time"

	"github.com/chromedp/cdproto/page"
	"github.com/chromedp/chromedp"
	"github.com/skip2/go-qrcode"
)

// GenerateOrderQR génère un QR pointant vers le suivi de commande,
// en base64 prêt à mettre dans <img src="...">
func GenerateOrderQR(orderID string) (string, error) {
	trackURL := fmt.Sprintf("%s?id=%s", GetFrontendOrderBaseURL(), url.QueryEscape(orderID))

	png, err := qrcode.Encode(trackURL, qrcode.Medium, 256)
	if err != nil {
		return "", err
	}
	return "data:image/png;base64," + base64.StdEncoding.EncodeToString(png), nil
}

// RenderOrderSummaryPDF charge la page de récapitulatif du front et
// l'imprime en PDF pour la joindre à l'e-mail de confirmation
func RenderOrderSummaryPDF(frontendURL, orderID, qrBase64 string) ([]byte, error) {
	q := url.Values{}
	q.Set("id", orderID)
	q.Set("qr", qrBase64)

	fullURL := fmt.Sprintf("%s?%s", frontendURL, q.Encode())

	ctx, cancel := chromedp.NewContext(context.Background())
	defer cancel()

	// timeout pour éviter de bloquer
	ctx, cancel = context.WithTimeout(ctx, 30*time.Second)
	defer cancel()

	var pdfBuf []byte

	err := chromedp.Run(ctx,
		chromedp.Navigate(fullURL),
		chromedp.WaitVisible("body", chromedp.ByQuery),
		chromedp.ActionFunc(func(ctx context.Context) error {
			buf, _, err := page.PrintToPDF().WithPrintBackground(true).Do(ctx)
			if err != nil {
				return err
			}
			pdfBuf = buf
			return nil
		}),
	)
	if err != nil {
		return nil, err
	}

	return pdfBuf, nil
}

// Helper: récupère l'URL de la page commande du front depuis l'env
func GetFrontendOrderBaseURL() string {
	u := os.Getenv("FRONTEND_ORDER_URL")
	if u == "" {
		// fallback local dev
		return "http://localhost:3000/order"
	}
	return u
}
