package origination

// Origination backend paths, relative to ORIGINATION_BASE_URL
const (
	PathToken = "/auth/token"

	PathSendOTP   = "/otp/send"
	PathVerifyOTP = "/otp/verify"

	PathCustomerInfo = "/customer/info"
	PathDashboard    = "/customer/dashboard"

	PathCreateApplication = "/application/create"
	PathFetchApplication  = "/application/fetch-all"
	PathMasterList        = "/master/list"

	PathSavePersonal = "/application/personal/save"
	PathSaveAddress  = "/application/contact/save"

	PathListLiabilities   = "/liability/list"
	PathSaveLiability     = "/liability/save"
	PathDeleteLiability   = "/liability/delete"
	PathConfirmLiability  = "/liability/confirm"
	PathCalculateEMI      = "/loan/emi/calculate"
	PathSaveLoanInfo      = "/application/loan/save"
	PathUploadDocument    = "/document/upload"
	PathSubmitApplication = "/application/submit"
)

// Header names used on every outbound call
const (
	HeaderAPIKey    = "x-api-key"
	HeaderRequestID = "X-Request-ID"
)

// Envelope status values that carry meaning on the client side
const (
	StatusOK           = "200"
	StatusUnauthorized = "401"
	StatusFailure      = "500"
	StatusNoRecord     = "608"
	MessageNoRecord    = "No record found"
)
