package validation

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestValidateEmail(t *testing.T) {
	tests := []struct {
		email   string
		wantErr bool
	}{
		{"anna@example.com", false},
		{"  Anna.Smirnova+work@Mail.RU ", false},
		{"", true},
		{"anna.example.com", true},
		{"anna@@example.com", true},
		{"anna@localhost", true},
		{"ан на@example.com", true},
	}

	for _, tt := range tests {
		err := ValidateEmail(tt.email)
		if tt.wantErr {
			assert.Error(t, err, tt.email)
		} else {
			assert.NoError(t, err, tt.email)
		}
	}
}

func TestValidatePassword(t *testing.T) {
	assert.NoError(t, ValidatePassword("Password1"))
	assert.NoError(t, ValidatePassword("пароль2024"))
	assert.Error(t, ValidatePassword("Pass1"))
	assert.Error(t, ValidatePassword("onlyletters"))
	assert.Error(t, ValidatePassword("1234567890"))
	assert.Error(t, ValidatePassword(strings.Repeat("a1", 40)))
}

func TestValidateRequired(t *testing.T) {
	got, err := ValidateRequired("сообщение", "  готово  ", 10)
	assert.NoError(t, err)
	assert.Equal(t, "готово", got)

	_, err = ValidateRequired("сообщение", "   ", 10)
	assert.Error(t, err)

	// Длина считается в символах, а не в байтах.
	_, err = ValidateRequired("сообщение", strings.Repeat("я", 10), 10)
	assert.NoError(t, err)
	_, err = ValidateRequired("сообщение", strings.Repeat("я", 11), 10)
	assert.Error(t, err)
}

func TestValidateFileURL(t *testing.T) {
	assert.NoError(t, ValidateFileURL("https://drive.example.com/result.zip"))
	assert.NoError(t, ValidateFileURL("http://example.com/a"))
	assert.NoError(t, ValidateFileURL("/deliverables/abc/file.pdf"))
	assert.Error(t, ValidateFileURL("ftp://example.com/file"))
	assert.Error(t, ValidateFileURL("https://"))
	assert.Error(t, ValidateFileURL("https://example.com/"+strings.Repeat("x", MaxFileURLLength)))
}

func TestValidateNameAndTitle(t *testing.T) {
	name, err := ValidateName("  Ира ")
	assert.NoError(t, err)
	assert.Equal(t, "Ира", name)
	_, err = ValidateName("И")
	assert.Error(t, err)

	_, err = ValidateGigTitle("ab")
	assert.Error(t, err)
	title, err := ValidateGigTitle(" Логотип ")
	assert.NoError(t, err)
	assert.Equal(t, "Логотип", title)
}

func TestValidateDeliveryDays(t *testing.T) {
	assert.NoError(t, ValidateDeliveryDays(1))
	assert.NoError(t, ValidateDeliveryDays(MaxDeliveryDays))
	assert.Error(t, ValidateDeliveryDays(0))
	assert.Error(t, ValidateDeliveryDays(MaxDeliveryDays+1))
}

func TestPreview(t *testing.T) {
	assert.Equal(t, "коротко", Preview("коротко", MessagePreviewLength))
	long := strings.Repeat("ж", 60)
	assert.Equal(t, strings.Repeat("ж", 50), Preview(long, MessagePreviewLength))
}
