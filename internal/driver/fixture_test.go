package driver

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
)

const registerHTML = `<!doctype html>
<html><body>
<button type="button" onclick="role = 'Patient'">Patient</button>
<button type="button" onclick="role = 'Doctor'">Doctor</button>
<form id="register">
  <input type="text" placeholder="Name">
  <input type="email" placeholder="Email">
  <input type="password" placeholder="Password">
  <button type="submit">Submit</button>
</form>
<script>
let role = '';
document.getElementById('register').addEventListener('submit', async (e) => {
  e.preventDefault();
  const [name, email, password] = [...document.querySelectorAll('input')].map(i => i.value);
  const res = await fetch('/api/register', {
    method: 'POST',
    headers: {'Content-Type': 'application/json'},
    body: JSON.stringify({name, email, password, role}),
  });
  const data = await res.json();
  alert(data.msg);
});
</script>
</body></html>`

const profileHTML = `<!doctype html>
<html><body>
<input placeholder="Enter qualification...">
<label><input type="checkbox" value="Cardiology">Cardiology</label>
<label><input type="checkbox" value="Dermatology">Dermatology</label>
<label><input type="checkbox" value="Neurology">Neurology</label>
<textarea placeholder="Enter a brief description..."></textarea>
<select><option value="">--</option><option value="Male">Male</option><option value="Female">Female</option></select>
<div id="slots"></div>
<button type="button" onclick="addSlot()">Add Slot</button>
<button type="button" onclick="submitProfile()">Submit</button>
<script>
function addSlot() {
  const input = document.createElement('input');
  input.placeholder = 'Capacity';
  document.getElementById('slots').appendChild(input);
}
function submitProfile() {
  const checked = [...document.querySelectorAll('input[type=checkbox]:checked')].map(c => c.value).join(',');
  const ok = document.querySelector('input[placeholder="Enter qualification..."]').value === 'MBBS, MD'
    && checked === 'Cardiology,Neurology'
    && document.querySelector('textarea').value.length > 0
    && document.querySelector('select').value === 'Male'
    && document.querySelector('input[placeholder="Capacity"]')?.value === '10';
  alert(ok ? 'Profile updated successfully' : 'Error updating profile');
}
</script>
</body></html>`

const silentHTML = `<!doctype html>
<html><body>
<form onsubmit="event.preventDefault()">
  <input type="email">
  <button type="submit">Login</button>
</form>
</body></html>`

// clinicFixture serves a minimal stand-in for the clinic front end.
type clinicFixture struct {
	*httptest.Server

	mu    sync.Mutex
	users map[string]string
}

func newClinicFixture(t *testing.T) *clinicFixture {
	t.Helper()
	f := &clinicFixture{users: map[string]string{}}

	mux := http.NewServeMux()
	page := func(body string) http.HandlerFunc {
		return func(w http.ResponseWriter, r *http.Request) {
			w.Header().Set("Content-Type", "text/html; charset=utf-8")
			w.Write([]byte(body))
		}
	}
	mux.Handle("/register", page(registerHTML))
	mux.Handle("/profile-change-doctor", page(profileHTML))
	mux.Handle("/login", page(silentHTML))
	mux.HandleFunc("/api/register", func(w http.ResponseWriter, r *http.Request) {
		var req struct {
			Email string `json:"email"`
			Role  string `json:"role"`
		}
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}

		f.mu.Lock()
		_, exists := f.users[req.Email]
		if !exists {
			f.users[req.Email] = req.Role
		}
		f.mu.Unlock()

		msg := "signed up successfully"
		if exists {
			msg = "User already exists"
		}
		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(map[string]string{"msg": msg})
	})

	f.Server = httptest.NewServer(mux)
	t.Cleanup(f.Close)
	return f
}

func (f *clinicFixture) roleOf(email string) string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.users[email]
}
