package i18n

import (
	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

// Message keys shared by the server responses and the Go client.
const (
	KeyPaymentSampad    = "payment.message.sampad"
	KeyPaymentNonSampad = "payment.message.non_sampad"
	KeyValidationFailed = "validation.failed"
	KeyInternalError    = "error.internal"
	KeyServerError      = "client.server_error"
	KeyTransportFailure = "client.transport_failure"
	KeyMissingToken     = "client.missing_token"
	KeySubmitted        = "client.submitted"
	KeyInFlight         = "client.in_flight"
)

var catalog = map[language.Tag]map[string]string{
	language.Persian: {
		"name.required":         "لطفاً نام خود را وارد کنید.",
		"name.max":              "نام نباید بیشتر از 100 کاراکتر باشد.",
		"isSampad.boolean":      "وضعیت سمپادی بودن باید بله یا خیر باشد.",
		"nationalCode.required": "کد ملی الزامی است.",
		"nationalCode.digits":   "کد ملی باید 10 رقم باشد.",
		"nationalCode.unique":   "این کد ملی قبلاً ثبت شده است.",
		"phone.required":        "شماره تلفن الزامی است.",
		"phone.regex":           "شماره تلفن معتبر نیست. مثلاً 09123456789",
		"phone.unique":          "این شماره تلفن قبلاً ثبت شده است.",
		"invalid_type":          "مقدار وارد شده معتبر نیست.",
		KeyPaymentSampad:        "لطفاً مبلغ ۵۰۰،۰۰۰ تومان را به شماره کارت زیر واریز کنید.",
		KeyPaymentNonSampad:     "لطفاً مبلغ ۱،۰۰۰،۰۰۰ تومان را به شماره کارت زیر واریز کنید.",
		KeyValidationFailed:     "اطلاعات وارد شده معتبر نیست.",
		KeyInternalError:        "خطای داخلی سرور.",
		KeyServerError:          "خطای سرور (%s)",
		KeyTransportFailure:     "خطا در اتصال به سرور — لطفاً اینترنت یا سرور را بررسی کنید.",
		KeyMissingToken:         "توکن CSRF پیدا نشد — صفحه را رفرش کنید.",
		KeySubmitted:            "ثبت اطلاعات با موفقیت انجام شد.",
		KeyInFlight:             "درخواست قبلی هنوز در حال ارسال است.",
	},
	language.English: {
		"name.required":         "Please enter your name.",
		"name.max":              "Name must not be longer than 100 characters.",
		"isSampad.boolean":      "The Sampad flag must be true or false.",
		"nationalCode.required": "National code is required.",
		"nationalCode.digits":   "National code must be 10 digits.",
		"nationalCode.unique":   "This national code is already registered.",
		"phone.required":        "Phone number is required.",
		"phone.regex":           "Phone number is not valid. Example: 09123456789",
		"phone.unique":          "This phone number is already registered.",
		"invalid_type":          "The submitted value has the wrong type.",
		KeyPaymentSampad:        "Please transfer 500,000 Toman to the card below.",
		KeyPaymentNonSampad:     "Please transfer 1,000,000 Toman to the card below.",
		KeyValidationFailed:     "The given data was invalid.",
		KeyInternalError:        "Internal server error.",
		KeyServerError:          "Server error (%s)",
		KeyTransportFailure:     "Could not reach the server. Please check your connection.",
		KeyMissingToken:         "Anti-forgery token not found. Please reload the page.",
		KeySubmitted:            "Registration submitted successfully.",
		KeyInFlight:             "A previous submission is still in progress.",
	},
}

func init() {
	for tag, messages := range catalog {
		for key, text := range messages {
			if err := message.SetString(tag, key, text); err != nil {
				panic("i18n: register " + tag.String() + "/" + key + ": " + err.Error())
			}
		}
	}
}
