package validation

import (
	"fmt"
	"net/url"
	"regexp"
	"strings"
	"unicode/utf8"
)

// Константы валидации
const (
	MinNameLength           = 2
	MaxNameLength           = 100
	MaxCompanyNameLength    = 200
	MinGigTitleLength       = 3
	MaxGigTitleLength       = 200
	MaxGigDescriptionLength = 5000
	MaxCoverLetterLength    = 3000
	MaxDeliveryDays         = 365
	MaxMessageLength        = 5000
	MaxSubmissionLength     = 5000
	MaxFileURLLength        = 1000
	MessagePreviewLength    = 50
)

var (
	emailLocalRegex  = regexp.MustCompile(`^[a-z0-9._+-]+$`)
	emailDomainRegex = regexp.MustCompile(`^[a-z0-9.-]+\.[a-z]{2,}$`)
)

// ValidateLength проверяет длину строки в символах.
func ValidateLength(fieldName, value string, min, max int) error {
	length := utf8.RuneCountInString(value)
	if min > 0 && length < min {
		return fmt.Errorf("%s должен быть не менее %d символов", fieldName, min)
	}
	if max > 0 && length > max {
		return fmt.Errorf("%s должен быть не более %d символов", fieldName, max)
	}
	return nil
}

// ValidateRequired обрезает пробелы и проверяет, что строка не пустая и не длиннее max.
// Возвращает обрезанное значение.
func ValidateRequired(fieldName, value string, max int) (string, error) {
	value = strings.TrimSpace(value)
	if value == "" {
		return "", fmt.Errorf("%s обязательно", fieldName)
	}
	if err := ValidateLength(fieldName, value, 0, max); err != nil {
		return "", err
	}
	return value, nil
}

// ValidateEmail проверяет формат email.
func ValidateEmail(email string) error {
	email = strings.ToLower(strings.TrimSpace(email))
	if email == "" {
		return fmt.Errorf("email обязателен")
	}

	localPart, domainPart, ok := strings.Cut(email, "@")
	if !ok || strings.Contains(domainPart, "@") {
		return fmt.Errorf("некорректный формат email")
	}
	if len(localPart) == 0 || len(localPart) > 64 {
		return fmt.Errorf("локальная часть email должна быть от 1 до 64 символов")
	}
	if len(domainPart) == 0 || len(domainPart) > 255 {
		return fmt.Errorf("доменная часть email должна быть от 1 до 255 символов")
	}
	if !emailLocalRegex.MatchString(localPart) {
		return fmt.Errorf("локальная часть email содержит недопустимые символы")
	}
	if !emailDomainRegex.MatchString(domainPart) {
		return fmt.Errorf("доменная часть email имеет некорректный формат")
	}
	return nil
}

// ValidateName проверяет имя пользователя.
func ValidateName(name string) (string, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return "", fmt.Errorf("имя обязательно")
	}
	if err := ValidateLength("имя", name, MinNameLength, MaxNameLength); err != nil {
		return "", err
	}
	return name, nil
}

// ValidateGigTitle проверяет заголовок заказа.
func ValidateGigTitle(title string) (string, error) {
	title = strings.TrimSpace(title)
	if title == "" {
		return "", fmt.Errorf("заголовок заказа обязателен")
	}
	if err := ValidateLength("заголовок заказа", title, MinGigTitleLength, MaxGigTitleLength); err != nil {
		return "", err
	}
	return title, nil
}

// ValidateDeliveryDays проверяет срок выполнения в днях.
func ValidateDeliveryDays(days int) error {
	if days < 1 {
		return fmt.Errorf("срок выполнения должен быть не меньше 1 дня")
	}
	if days > MaxDeliveryDays {
		return fmt.Errorf("срок выполнения не может превышать %d дней", MaxDeliveryDays)
	}
	return nil
}

// ValidateFileURL проверяет ссылку на результат работы: http(s) URL
// или путь к загруженному файлу (/deliverables/...).
func ValidateFileURL(link string) error {
	if err := ValidateLength("ссылка на файл", link, 0, MaxFileURLLength); err != nil {
		return err
	}
	if strings.HasPrefix(link, "/deliverables/") {
		return nil
	}

	parsedURL, err := url.Parse(link)
	if err != nil {
		return fmt.Errorf("некорректный формат URL")
	}
	if parsedURL.Scheme != "http" && parsedURL.Scheme != "https" {
		return fmt.Errorf("ссылка должна начинаться с http:// или https://")
	}
	if parsedURL.Host == "" {
		return fmt.Errorf("ссылка должна содержать доменное имя")
	}
	return nil
}

// Preview возвращает первые n символов строки (по рунам).
func Preview(s string, n int) string {
	if utf8.RuneCountInString(s) <= n {
		return s
	}
	runes := []rune(s)
	return string(runes[:n])
}
