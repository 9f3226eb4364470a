// Package models defines the wire types exchanged with the HR backend.
package models

// RoleName is the name of a system role as carried in the login result.
type RoleName string

const (
	RoleAdmin    RoleName = "ADMIN"
	RoleManage   RoleName = "MANAGE"
	RoleEmployee RoleName = "EMPLOYEE"
	RoleHR       RoleName = "HR"
)

// User is an account known to the backend.
type User struct {
	UserID   int64    `json:"userId"`
	Username string   `json:"username"`
	Email    string   `json:"email"`
	IsActive bool     `json:"isActive"`
	Roles    []string `json:"roles"`
}

// UserRequest is the body of POST /User and PUT /User/{id}.
type UserRequest struct {
	Username string   `json:"username"`
	Email    string   `json:"email"`
	Password string   `json:"password,omitempty"`
	Roles    []string `json:"roles,omitempty"`
}

// Role is an assignable role. Role names are what the workflow wizard shows
// for role-based approver assignment.
type Role struct {
	RoleID      int64   `json:"roleId"`
	RoleName    string  `json:"roleName"`
	Description *string `json:"description,omitempty"`
	IsActive    bool    `json:"isActive"`
}

// RoleRequest is the body of POST /Role.
type RoleRequest struct {
	RoleName    string  `json:"roleName"`
	Description *string `json:"description,omitempty"`
}

// TaskStatus is the lifecycle state of a task.
type TaskStatus string

const (
	TaskPending    TaskStatus = "Pending"
	TaskInProgress TaskStatus = "InProgress"
	TaskApproved   TaskStatus = "Approved"
	TaskRejected   TaskStatus = "Rejected"
	TaskCancelled  TaskStatus = "Cancelled"
)

// Decidable reports whether a task in this status can still be approved or rejected.
func (s TaskStatus) Decidable() bool {
	return s == TaskPending || s == TaskInProgress
}

// TaskPriority ranks tasks.
type TaskPriority string

const (
	PriorityHigh   TaskPriority = "High"
	PriorityMedium TaskPriority = "Medium"
	PriorityLow    TaskPriority = "Low"
)

// Task is a unit of work assigned to a user and subject to approval.
type Task struct {
	TaskID           int64        `json:"taskId"`
	TaskTitle        string       `json:"taskTitle"`
	TaskType         string       `json:"taskType"`
	TaskDescription  *string      `json:"taskDescription"`
	Priority         TaskPriority `json:"priority"`
	Status           TaskStatus   `json:"status"`
	DueDate          *string      `json:"dueDate"`
	CreatedDate      string       `json:"createdDate,omitempty"`
	AssignedTo       int64        `json:"assignedTo"`
	AssignedUsername *string      `json:"assignedUsername"`
	CreatedBy        int64        `json:"createdBy"`
	CompletedDate    *string      `json:"completedDate"`
	CompletionNotes  *string      `json:"completionNotes"`
}

// TaskRequest is the body of POST /Task and PUT /Task/{id}.
type TaskRequest struct {
	TaskTitle       string       `json:"taskTitle,omitempty"`
	TaskType        string       `json:"taskType,omitempty"`
	TaskDescription string       `json:"taskDescription,omitempty"`
	AssignedTo      int64        `json:"assignedTo,omitempty"`
	Priority        TaskPriority `json:"priority,omitempty"`
	DueDate         string       `json:"dueDate,omitempty"`
	CompletionNotes string       `json:"completionNotes,omitempty"`
}

// CheckInRequest is the body of POST /attendance/check-in.
type CheckInRequest struct {
	EmployeeID int64  `json:"employeeId"`
	Location   string `json:"location,omitempty"`
	Remarks    string `json:"remarks,omitempty"`
}

// AttendanceResponse is returned by check-in and check-out.
type AttendanceResponse struct {
	AttendanceID   int64  `json:"attendanceId"`
	AttendanceDate string `json:"attendanceDate"`
	CheckInTime    string `json:"checkInTime"`
	Status         string `json:"status"`
	LateMinutes    int    `json:"lateMinutes"`
	Message        string `json:"message"`
}

// AttendanceRecord is one day of attendance history.
type AttendanceRecord struct {
	Date       string   `json:"date"`
	ShiftName  string   `json:"shiftName"`
	CheckIn    *string  `json:"checkIn,omitempty"`
	CheckOut   *string  `json:"checkOut,omitempty"`
	TotalHours *float64 `json:"totalHours,omitempty"`
	Status     string   `json:"status"`
}
