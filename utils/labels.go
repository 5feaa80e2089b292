package utils

var slotLabels = map[string]string{
	"morning":   "Manha",
	"afternoon": "Tarde",
}

var statusLabels = map[string]string{
	"pending":  "Pendente",
	"approved": "Aprovado",
	"rejected": "Rejeitado",
}

var paymentLabels = map[string]string{
	"free": "Gratuito",
	"paid": "Pago",
}

// SlotLabel is the customer facing name of a slot. Clock-time slots are their own label.
func SlotLabel(slot string) string {
	return labelOr(slotLabels, slot)
}

func StatusLabel(status string) string {
	return labelOr(statusLabels, status)
}

func PaymentLabel(payment string) string {
	return labelOr(paymentLabels, payment)
}

func labelOr(labels map[string]string, key string) string {
	if l, ok := labels[key]; ok {
		return l
	}
	return key
}
