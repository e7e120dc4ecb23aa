package bot

import (
	"fmt"

	tele "gopkg.in/telebot.v4"

	"shopbot/core/telegram/keyboard"
	"shopbot/internal/catalog"
)

// Callback uniques. Payload carries the brand/flavor/order identifier;
// decoding happens once in the callback router.
const (
	cbBrand    = "shop_brand"
	cbBack     = "shop_back"
	cbFlavor   = "shop_flavor"
	cbCheck    = "order_check"
	cbReject   = "order_reject"
	cbComplete = "order_complete"
)

func brandMenu(brands []catalog.Brand) *tele.ReplyMarkup {
	buttons := make([]keyboard.InlineBtn, 0, len(brands))
	for _, b := range brands {
		buttons = append(buttons, keyboard.InlineBtn{
			Text:   b.Name,
			Unique: cbBrand,
			Data:   b.ID,
		})
	}
	return keyboard.InlineButtons(buttons)
}

func flavorMenu(flavors []catalog.Flavor) *tele.ReplyMarkup {
	buttons := make([]keyboard.InlineBtn, 0, len(flavors)+1)
	for _, f := range flavors {
		buttons = append(buttons, keyboard.InlineBtn{
			Text:   fmt.Sprintf("%s - %d₸ / %d USDT", f.Name, f.PriceKZT, f.PriceUSDT),
			Unique: cbFlavor,
			Data:   f.ID,
		})
	}
	buttons = append(buttons, keyboard.InlineBtn{Text: btnBack, Unique: cbBack})
	return keyboard.InlineButtons(buttons)
}

func adminReviewMenu(orderID string) *tele.ReplyMarkup {
	return keyboard.InlineButtons([]keyboard.InlineBtn{
		{Text: btnCheck, Unique: cbCheck, Data: orderID},
		{Text: btnReject, Unique: cbReject, Data: orderID},
	})
}

func completeMenu(orderID string) *tele.ReplyMarkup {
	return keyboard.InlineButtons([]keyboard.InlineBtn{
		{Text: btnComplete, Unique: cbComplete, Data: orderID},
	})
}
