package bot

import (
	"fmt"
	"strings"

	"shopbot/core/telegram/format"
	"shopbot/internal/ledger"
)

// User-facing texts. The shop speaks Russian; identifiers stay English.
const (
	msgWelcome     = "Добро пожаловать в магазин одноразок! Выберите бренд:"
	msgChooseBrand = "Выберите бренд:"

	msgAskPhone   = "Пожалуйста, введите ваш номер телефона в формате: +7XXXXXXXXXX"
	msgRetryPhone = "Пожалуйста, введите корректный номер телефона в формате: +7XXXXXXXXXX"

	msgOrderRejected = "Ваш заказ отклонен администратором. " +
		"Пожалуйста, свяжитесь с администратором для уточнения деталей."

	msgPaymentVerified = "Администратор проверил вашу оплату!\n" +
		"Нажмите кнопку 'Подтвердить заказ' для завершения."

	noticeOrderUnavailable = "Заказ не найден или не подтвержден администратором"
	noticeActionFailed     = "Произошла ошибка при обработке заказа"

	btnBack     = "Назад"
	btnCheck    = "Проверить оплату"
	btnReject   = "Отклонить заказ"
	btnComplete = "Подтвердить заказ"
)

func chooseFlavorText(brandName string) string {
	return fmt.Sprintf("Выберите вкус %s:", brandName)
}

func flavorChosenText(flavorName string, priceKZT, priceUSDT int) string {
	return fmt.Sprintf(
		"Вы выбрали: %s\nЦена: %d₸ / %d USDT\n\nПожалуйста, введите адрес доставки:",
		flavorName, priceKZT, priceUSDT,
	)
}

func orderSummaryText(ord *ledger.Order, wallet string) string {
	return fmt.Sprintf(
		"Ваш заказ:\n"+
			"Товар: %s\n"+
			"Цена: %d₸ / %d USDT\n"+
			"Адрес: %s\n"+
			"Телефон: %s\n\n"+
			"Для оплаты переведите %d USDT на адрес:\n"+
			"USDT (TRC20): %s\n\n"+
			"После оплаты дождитесь проверки администратора.",
		ord.Snapshot.ProductName, ord.Snapshot.PriceKZT, ord.Snapshot.PriceUSDT,
		ord.Snapshot.Address, ord.Snapshot.Phone,
		ord.Snapshot.PriceUSDT, wallet,
	)
}

func adminNewOrderText(ord *ledger.Order, username string) string {
	user := "@" + username
	if username == "" {
		user = fmt.Sprintf("id%d", ord.OwnerID)
	}
	return fmt.Sprintf(
		"Новый заказ!\n"+
			"ID заказа: %s\n"+
			"Пользователь: %s\n"+
			"Товар: %s\n"+
			"Цена: %d₸ / %d USDT\n"+
			"Адрес: %s\n"+
			"Телефон: %s\n\n"+
			"Ожидает проверки оплаты.",
		ord.ID, user,
		ord.Snapshot.ProductName, ord.Snapshot.PriceKZT, ord.Snapshot.PriceUSDT,
		ord.Snapshot.Address, ord.Snapshot.Phone,
	)
}

func adminOrderCheckedText(orderID string) string {
	return fmt.Sprintf("Заказ %s проверен. Ожидаем подтверждения от пользователя.", orderID)
}

func adminOrderRejectedText(orderID string) string {
	return fmt.Sprintf("Заказ %s отклонен и пользователь уведомлен.", orderID)
}

func orderAcceptedText(ord *ledger.Order, estimateMinutes int) string {
	return fmt.Sprintf(
		"Ваш заказ принят!\n"+
			"Товар: %s\n"+
			"Цена: %d₸ / %d USDT\n"+
			"Адрес: %s\n"+
			"Телефон: %s\n\n"+
			"Примерное время доставки: %d минут\n"+
			"Пожалуйста, ожидайте.",
		ord.Snapshot.ProductName, ord.Snapshot.PriceKZT, ord.Snapshot.PriceUSDT,
		ord.Snapshot.Address, ord.Snapshot.Phone, estimateMinutes,
	)
}

// pendingOrdersText renders the admin /orders listing in Markdown. User
// supplied fields and order ids go through the markdown escaper: an address
// could break the parse mode, and ids carry underscores.
func pendingOrdersText(orders []*ledger.Order) string {
	if len(orders) == 0 {
		return "Нет ожидающих заказов."
	}
	var b strings.Builder
	b.WriteString(fmt.Sprintf("Ожидающие заказы (%d):", len(orders)))
	for _, ord := range orders {
		status := "ожидает оплаты"
		if ord.Status == ledger.StatusVerified {
			status = "оплата проверена"
		}
		b.WriteString(fmt.Sprintf(
			"\n\n*%s* — %s\n%s, %d₸ / %d USDT\n%s",
			mdEscape(ord.ID), status,
			mdEscape(ord.Snapshot.ProductName),
			ord.Snapshot.PriceKZT, ord.Snapshot.PriceUSDT,
			mdEscape(ord.Snapshot.Address),
		))
	}
	return b.String()
}

func mdEscape(text string) string {
	escaped, err := format.EscapeMarkdown(text, format.MarkdownV1, "")
	if err != nil {
		return text
	}
	return escaped
}
